package migrate

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// migrationFile matches 001_create_locations.up.sql and its .down.sql twin
var migrationFile = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// FSProvider loads migrations from the top level of an fs.FS, typically an
// embed.FS, and tracks versions in a SQLite table.
type FSProvider struct {
	fsys           fs.FS
	migrationTable string
}

// NewFSProvider creates a provider. An empty table name means
// "schema_migrations".
func NewFSProvider(fsys fs.FS, migrationTable string) *FSProvider {
	if migrationTable == "" {
		migrationTable = "schema_migrations"
	}
	return &FSProvider{fsys: fsys, migrationTable: migrationTable}
}

// GetMigrations reads and pairs every up and down file
func (p *FSProvider) GetMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFile.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version in %s: %w", entry.Name(), err)
		}
		content, err := fs.ReadFile(p.fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		mg, ok := byVersion[version]
		if !ok {
			mg = &Migration{Version: version, Name: strings.ReplaceAll(matches[2], "_", " ")}
			byVersion[version] = mg
		}
		if matches[3] == "up" {
			mg.Up = string(content)
		} else {
			mg.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mg := range byVersion {
		migrations = append(migrations, *mg)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// CreateMigrationTable creates the version tracking table if needed
func (p *FSProvider) CreateMigrationTable(db DB) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`, p.migrationTable))
	if err != nil {
		return fmt.Errorf("creating migration table: %w", err)
	}
	return nil
}

// GetCurrentVersion returns the highest recorded version
func (p *FSProvider) GetCurrentVersion(db DB) (int, error) {
	var version int
	err := db.QueryRow(fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", p.migrationTable)).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading current version: %w", err)
	}
	return version, nil
}

// SetVersion records version as the current one
func (p *FSProvider) SetVersion(db DB, version int) error {
	var err error
	if version == 0 {
		_, err = db.Exec(fmt.Sprintf("DELETE FROM %s", p.migrationTable))
	} else {
		_, err = db.Exec(fmt.Sprintf("DELETE FROM %s WHERE version > ?", p.migrationTable), version)
		if err == nil {
			_, err = db.Exec(fmt.Sprintf(
				"INSERT OR REPLACE INTO %s (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)", p.migrationTable), version)
		}
	}
	if err != nil {
		return fmt.Errorf("setting version %d: %w", version, err)
	}
	return nil
}
