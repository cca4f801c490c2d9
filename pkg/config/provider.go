package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/solar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

// ErrLocationNotFound is returned when a named location is not configured
var ErrLocationNotFound = errors.New("location not found")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetLocations() ([]LocationData, error)
	GetLocation(name string) (*LocationData, error)
	GetSettings() (*SettingsData, error)
	GetStorageConfig() (*StorageData, error)
	GetRESTServerConfig() (*RESTServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Locations  []LocationData  `json:"locations"`
	Settings   SettingsData    `json:"settings"`
	Storage    StorageData     `json:"storage,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

// LocationData is a named place events are computed for
type LocationData struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Location loads the IANA zone of the location. An empty zone means UTC.
func (l LocationData) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", l.Name, err)
	}
	return loc, nil
}

// SettingsData mirrors sunmoon.Settings. Nil fields keep the library default.
type SettingsData struct {
	RoundToNearestMinute     *bool             `json:"round_to_nearest_minute,omitempty"`
	ReturnTimeForNoEventCase *bool             `json:"return_time_for_no_event_case,omitempty"`
	DateFormatKeys           map[string]string `json:"date_format_keys,omitempty"`
}

// Update converts the configured settings into a partial settings change
func (s SettingsData) Update() sunmoon.SettingsUpdate {
	u := sunmoon.SettingsUpdate{
		RoundToNearestMinute:     s.RoundToNearestMinute,
		ReturnTimeForNoEventCase: s.ReturnTimeForNoEventCase,
	}
	if s.DateFormatKeys != nil {
		u.DateFormatKeys = make(map[solar.NoEventCode]string, len(s.DateFormatKeys))
		for code, marker := range s.DateFormatKeys {
			u.DateFormatKeys[solar.NoEventCode(code)] = marker
		}
	}
	return u
}

// StorageData holds the configuration for the almanac store
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// PostgresData configures the PostgreSQL almanac store
type PostgresData struct {
	ConnectionString string `json:"connection_string"`
	// PrecomputeDays is how many days from today are stored per location at startup
	PrecomputeDays int `json:"precompute_days,omitempty"`
}

// RESTServerData configures the HTTP API
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// FindLocation returns the location with the given name
func (c *ConfigData) FindLocation(name string) (*LocationData, error) {
	for i := range c.Locations {
		if c.Locations[i].Name == name {
			loc := c.Locations[i]
			return &loc, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrLocationNotFound)
}

// Validate checks coordinates, zones and location name uniqueness
func (c *ConfigData) Validate() error {
	seen := make(map[string]bool, len(c.Locations))
	for _, l := range c.Locations {
		if err := l.Validate(); err != nil {
			return err
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate location name %q", l.Name)
		}
		seen[l.Name] = true
	}

	for code := range c.Settings.DateFormatKeys {
		switch solar.NoEventCode(code) {
		case solar.SunHigh, solar.SunLow:
		default:
			return fmt.Errorf("unknown no-event code %q in date-format-keys", code)
		}
	}

	if c.Storage.Postgres != nil {
		if c.Storage.Postgres.ConnectionString == "" {
			return errors.New("postgres storage requires a connection string")
		}
		if c.Storage.Postgres.PrecomputeDays < 0 {
			return errors.New("precompute-days must not be negative")
		}
	}

	if c.RESTServer != nil {
		if c.RESTServer.Port < 0 || c.RESTServer.Port > 65535 {
			return fmt.Errorf("invalid REST server port %d", c.RESTServer.Port)
		}
		if (c.RESTServer.Cert == "") != (c.RESTServer.Key == "") {
			return errors.New("REST server cert and key must be set together")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks a single location
func (l LocationData) Validate() error {
	if l.Name == "" {
		return errors.New("location name is required")
	}
	if !finite(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("location %s: latitude %v out of range", l.Name, l.Latitude)
	}
	if !finite(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("location %s: longitude %v out of range", l.Name, l.Longitude)
	}
	if _, err := l.Location(); err != nil {
		return err
	}
	return nil
}
