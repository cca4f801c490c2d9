package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/chrissnell/meeussunmoon/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationTable = "config_schema_migrations"

// NewConfigMigrator returns a migrator for the configuration schema in db
func NewConfigMigrator(db *sql.DB, logger *zap.SugaredLogger) (*migrate.Migrator, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return migrate.NewMigrator(db, migrate.NewFSProvider(sub, migrationTable), logger), nil
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the database at dbPath and brings its schema up to date
func NewSQLiteProvider(dbPath string, logger *zap.SugaredLogger) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	m, err := NewConfigMigrator(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	locations, err := s.GetLocations()
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	config.Locations = locations

	settings, err := s.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	config.Settings = *settings

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	rest, err := s.GetRESTServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load REST server config: %w", err)
	}
	config.RESTServer = rest

	return config, nil
}

// GetLocations returns location configurations from the database
func (s *SQLiteProvider) GetLocations() ([]LocationData, error) {
	query := `
		SELECT name, latitude, longitude, timezone
		FROM locations
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations := []LocationData{}
	for rows.Next() {
		var l LocationData
		if err := rows.Scan(&l.Name, &l.Latitude, &l.Longitude, &l.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetLocation returns a single location by name
func (s *SQLiteProvider) GetLocation(name string) (*LocationData, error) {
	query := `
		SELECT name, latitude, longitude, timezone
		FROM locations
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND name = ?
	`

	var l LocationData
	err := s.db.QueryRow(query, name).Scan(&l.Name, &l.Latitude, &l.Longitude, &l.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrLocationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location %s: %w", name, err)
	}
	return &l, nil
}

// GetSettings returns the calculation settings. Unset values stay nil.
func (s *SQLiteProvider) GetSettings() (*SettingsData, error) {
	settings := &SettingsData{}

	var round, noEventTime sql.NullBool
	err := s.db.QueryRow(`
		SELECT round_to_nearest_minute, return_time_for_no_event_case
		FROM settings
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`).Scan(&round, &noEventTime)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query settings: %w", err)
	default:
		if round.Valid {
			settings.RoundToNearestMinute = &round.Bool
		}
		if noEventTime.Valid {
			settings.ReturnTimeForNoEventCase = &noEventTime.Bool
		}
	}

	rows, err := s.db.Query(`
		SELECT code, marker
		FROM date_format_keys
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query date format keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, marker string
		if err := rows.Scan(&code, &marker); err != nil {
			return nil, fmt.Errorf("failed to scan date format key: %w", err)
		}
		if settings.DateFormatKeys == nil {
			settings.DateFormatKeys = make(map[string]string)
		}
		settings.DateFormatKeys[code] = marker
	}
	return settings, rows.Err()
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var pg PostgresData
	err := s.db.QueryRow(`
		SELECT postgres_connection_string, precompute_days
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`).Scan(&pg.ConnectionString, &pg.PrecomputeDays)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	default:
		storage.Postgres = &pg
	}
	return storage, nil
}

// GetRESTServerConfig returns the REST server configuration, or nil when absent
func (s *SQLiteProvider) GetRESTServerConfig() (*RESTServerData, error) {
	var rest RESTServerData
	err := s.db.QueryRow(`
		SELECT cert, key, port, listen_addr
		FROM rest_server_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`).Scan(&rest.Cert, &rest.Key, &rest.Port, &rest.ListenAddr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query REST server config: %w", err)
	}
	return &rest, nil
}

// IsReadOnly returns false since SQLite supports writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Write methods for configuration management

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	if err := configData.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	for _, location := range configData.Locations {
		if err := s.insertLocation(tx, configID, &location); err != nil {
			return fmt.Errorf("failed to insert location %s: %w", location.Name, err)
		}
	}

	if err := s.insertSettings(tx, configID, &configData.Settings); err != nil {
		return fmt.Errorf("failed to insert settings: %w", err)
	}

	if pg := configData.Storage.Postgres; pg != nil {
		_, err := tx.Exec(`
			INSERT INTO storage_configs (config_id, postgres_connection_string, precompute_days)
			VALUES (?, ?, ?)
		`, configID, pg.ConnectionString, pg.PrecomputeDays)
		if err != nil {
			return fmt.Errorf("failed to insert storage config: %w", err)
		}
	}

	if rest := configData.RESTServer; rest != nil {
		_, err := tx.Exec(`
			INSERT INTO rest_server_configs (config_id, cert, key, port, listen_addr)
			VALUES (?, ?, ?, ?, ?)
		`, configID, rest.Cert, rest.Key, rest.Port, rest.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to insert REST server config: %w", err)
		}
	}

	if _, err := tx.Exec(`UPDATE configs SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, configID); err != nil {
		return fmt.Errorf("failed to touch config: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM locations WHERE config_id = ?",
		"DELETE FROM settings WHERE config_id = ?",
		"DELETE FROM date_format_keys WHERE config_id = ?",
		"DELETE FROM storage_configs WHERE config_id = ?",
		"DELETE FROM rest_server_configs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertLocation(tx *sql.Tx, configID int64, location *LocationData) error {
	_, err := tx.Exec(`
		INSERT INTO locations (config_id, name, latitude, longitude, timezone)
		VALUES (?, ?, ?, ?, ?)
	`, configID, location.Name, location.Latitude, location.Longitude, location.Timezone)
	return err
}

func (s *SQLiteProvider) insertSettings(tx *sql.Tx, configID int64, settings *SettingsData) error {
	_, err := tx.Exec(`
		INSERT INTO settings (config_id, round_to_nearest_minute, return_time_for_no_event_case)
		VALUES (?, ?, ?)
	`, configID, nullBool(settings.RoundToNearestMinute), nullBool(settings.ReturnTimeForNoEventCase))
	if err != nil {
		return err
	}

	for code, marker := range settings.DateFormatKeys {
		_, err := tx.Exec(`
			INSERT INTO date_format_keys (config_id, code, marker) VALUES (?, ?, ?)
		`, configID, code, marker)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddLocation adds a new location to the configuration
func (s *SQLiteProvider) AddLocation(location *LocationData) error {
	if err := location.Validate(); err != nil {
		return err
	}

	// Validate location doesn't already exist
	if _, err := s.GetLocation(location.Name); err == nil {
		return fmt.Errorf("location %s already exists", location.Name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	if err := s.insertLocation(tx, configID, location); err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}

	return tx.Commit()
}

// UpdateLocation replaces the location stored under name
func (s *SQLiteProvider) UpdateLocation(name string, location *LocationData) error {
	if err := location.Validate(); err != nil {
		return err
	}

	if _, err := s.GetLocation(name); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE locations SET name = ?, latitude = ?, longitude = ?, timezone = ?
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND name = ?
	`, location.Name, location.Latitude, location.Longitude, location.Timezone, name)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

// DeleteLocation removes a location from the configuration
func (s *SQLiteProvider) DeleteLocation(name string) error {
	result, err := s.db.Exec(`
		DELETE FROM locations
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND name = ?
	`, name)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", name, ErrLocationNotFound)
	}
	return nil
}

func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx) (int64, error) {
	var configID int64
	err := tx.QueryRow("SELECT id FROM configs WHERE name = 'default'").Scan(&configID)
	if err == nil {
		return configID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := tx.Exec("INSERT INTO configs (name) VALUES ('default')")
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
