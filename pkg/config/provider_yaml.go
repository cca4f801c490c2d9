package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML converts a YAML document into ConfigData and validates it
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Locations  []LocationYAML  `yaml:"locations"`
		Settings   SettingsYAML    `yaml:"settings,omitempty"`
		Storage    StorageYAML     `yaml:"storage,omitempty"`
		RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := &ConfigData{
		Locations: make([]LocationData, len(yamlConfig.Locations)),
		Settings: SettingsData{
			RoundToNearestMinute:     yamlConfig.Settings.RoundToNearestMinute,
			ReturnTimeForNoEventCase: yamlConfig.Settings.ReturnTimeForNoEventCase,
			DateFormatKeys:           yamlConfig.Settings.DateFormatKeys,
		},
	}

	for i, l := range yamlConfig.Locations {
		config.Locations[i] = LocationData{
			Name:      l.Name,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Timezone:  l.Timezone,
		}
	}

	if pg := yamlConfig.Storage.Postgres; pg != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: pg.ConnectionString,
			PrecomputeDays:   pg.PrecomputeDays,
		}
	}

	if rest := yamlConfig.RESTServer; rest != nil {
		config.RESTServer = &RESTServerData{
			Cert:       rest.Cert,
			Key:        rest.Key,
			Port:       rest.Port,
			ListenAddr: rest.ListenAddr,
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetLocations returns the configured locations
func (y *YAMLProvider) GetLocations() ([]LocationData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Locations, nil
}

// GetLocation returns one location by name
func (y *YAMLProvider) GetLocation(name string) (*LocationData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.FindLocation(name)
}

// GetSettings returns the calculation settings
func (y *YAMLProvider) GetSettings() (*SettingsData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Settings, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// GetRESTServerConfig returns the REST server configuration, or nil when absent
func (y *YAMLProvider) GetRESTServerConfig() (*RESTServerData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.RESTServer, nil
}

// IsReadOnly returns true since YAML files are read-only in this implementation
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with YAML tags

type LocationYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone,omitempty"`
}

type SettingsYAML struct {
	RoundToNearestMinute     *bool             `yaml:"round-to-nearest-minute,omitempty"`
	ReturnTimeForNoEventCase *bool             `yaml:"return-time-for-no-event-case,omitempty"`
	DateFormatKeys           map[string]string `yaml:"date-format-keys,omitempty"`
}

type StorageYAML struct {
	Postgres *PostgresYAML `yaml:"postgres,omitempty"`
}

type PostgresYAML struct {
	ConnectionString string `yaml:"connection-string"`
	PrecomputeDays   int    `yaml:"precompute-days,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}
