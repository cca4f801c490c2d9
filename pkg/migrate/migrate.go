// Package migrate applies versioned SQL migrations to a database/sql
// connection, recording the applied version in a tracking table.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration is one numbered schema change
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB is satisfied by both *sql.DB and *sql.Tx
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider loads migrations and tracks the applied version
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db DB) error
}

// Migrator runs migrations from a provider against a database
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
	logger   *zap.SugaredLogger
}

// NewMigrator creates a migrator. A nil logger discards output.
func NewMigrator(db *sql.DB, provider MigrationProvider, logger *zap.SugaredLogger) *Migrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Migrator{
		db:       db,
		provider: provider,
		logger:   logger,
	}
}

// MigrateUp applies every pending migration
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(-1)
}

// MigrateTo moves the schema up or down to targetVersion; -1 means latest.
func (m *Migrator) MigrateTo(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}

	if targetVersion == -1 {
		if len(migrations) == 0 {
			return nil
		}
		targetVersion = migrations[len(migrations)-1].Version
	}

	if targetVersion < current {
		for i := len(migrations) - 1; i >= 0; i-- {
			mg := migrations[i]
			if mg.Version > targetVersion && mg.Version <= current {
				if err := m.execute(mg, false); err != nil {
					return fmt.Errorf("rolling back migration %d: %w", mg.Version, err)
				}
			}
		}
		return nil
	}

	for _, mg := range migrations {
		if mg.Version > current && mg.Version <= targetVersion {
			if err := m.execute(mg, true); err != nil {
				return fmt.Errorf("applying migration %d: %w", mg.Version, err)
			}
		}
	}
	return nil
}

// GetCurrentVersion returns the applied version, 0 for an empty database
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("creating migration table: %w", err)
	}
	return m.provider.GetCurrentVersion(m.db)
}

// GetPendingMigrations returns the migrations not yet applied, oldest first
func (m *Migrator) GetPendingMigrations() ([]Migration, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}

	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mg := range migrations {
		if mg.Version > current {
			pending = append(pending, mg)
		}
	}
	return pending, nil
}

func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// execute runs one migration and its version bookkeeping in a transaction
func (m *Migrator) execute(mg Migration, up bool) error {
	query, direction, newVersion := mg.Up, "up", mg.Version
	if !up {
		query, direction, newVersion = mg.Down, "down", mg.Version-1
	}
	if query == "" {
		return fmt.Errorf("migration %d has no %s SQL", mg.Version, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(tx, newVersion); err != nil {
		return fmt.Errorf("updating migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}

	m.logger.Infow("applied migration", "version", mg.Version, "name", mg.Name, "direction", direction)
	return nil
}
