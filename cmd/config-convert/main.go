package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/meeussunmoon/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if YAML file exists
	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
	}

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration...\n")
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	configData, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  Loaded %d locations\n", len(configData.Locations))

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loading configuration into SQLite database...\n")
	if err := convert(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error converting configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: sunmoon serve --config-backend sqlite --config %s\n", *sqliteFile)
}

// convert writes configData to a new SQLite database and reads it back to
// make sure nothing was lost on the way.
func convert(dbPath string, configData *config.ConfigData) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// The provider applies the embedded schema migrations when it opens the database
	sqliteProvider, err := config.NewSQLiteProvider(dbPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer sqliteProvider.Close()

	fmt.Printf("  Inserting %d locations...\n", len(configData.Locations))
	if err := sqliteProvider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	stored, err := sqliteProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to read back configuration: %w", err)
	}
	if diffs := config.Compare(configData, stored); len(diffs) > 0 {
		for _, d := range diffs {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", d)
		}
		return fmt.Errorf("stored configuration differs from the YAML source in %d places", len(diffs))
	}

	fmt.Printf("  Configuration successfully inserted into database\n")
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Locations (%d):\n", len(configData.Locations))
	for _, l := range configData.Locations {
		tz := l.Timezone
		if tz == "" {
			tz = "UTC"
		}
		fmt.Printf("  - %s (%.4f, %.4f) %s\n", l.Name, l.Latitude, l.Longitude, tz)
	}

	fmt.Printf("\nStorage Backends:\n")
	if configData.Storage.Postgres != nil {
		fmt.Printf("  - PostgreSQL: %s (precompute %d days)\n", configData.Storage.Postgres.ConnectionString, configData.Storage.Postgres.PrecomputeDays)
	}

	if configData.RESTServer != nil {
		fmt.Printf("\nREST server: %s:%d\n", configData.RESTServer.ListenAddr, configData.RESTServer.Port)
	}
}
