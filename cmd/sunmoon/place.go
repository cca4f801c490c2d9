package main

import (
	"fmt"
	"time"

	"github.com/chrissnell/meeussunmoon/internal/app"
	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

func addPlaceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("location", "", "Name of a location from the configuration")
	f.Float64("lat", 0, "Latitude in degrees, north positive")
	f.Float64("lon", 0, "Longitude in degrees, east positive")
	f.String("tz", "", "IANA time zone of the results (default UTC)")
}

// resolvePlace returns the place named by --location, or the one given by
// --lat/--lon/--tz, with the calculator that should be used for it. A
// configured location brings the configured settings with it.
func resolvePlace(v *viper.Viper) (config.LocationData, *sunmoon.Calculator, error) {
	if name := v.GetString("location"); name != "" {
		provider, err := newConfigProvider(v)
		if err != nil {
			return config.LocationData{}, nil, err
		}
		defer provider.Close()

		cfg, err := provider.LoadConfig()
		if err != nil {
			return config.LocationData{}, nil, fmt.Errorf("loading configuration: %w", err)
		}
		l, err := cfg.FindLocation(name)
		if err != nil {
			return config.LocationData{}, nil, err
		}
		return *l, app.NewCalculator(cfg.Settings, settingsUpdate(v), log.GetZapLogger()), nil
	}

	if !v.IsSet("lat") || !v.IsSet("lon") {
		return config.LocationData{}, nil, fmt.Errorf("either --location or both --lat and --lon are required")
	}
	l := config.LocationData{
		Name:      "coordinates",
		Latitude:  v.GetFloat64("lat"),
		Longitude: v.GetFloat64("lon"),
		Timezone:  v.GetString("tz"),
	}
	if err := l.Validate(); err != nil {
		return config.LocationData{}, nil, err
	}
	return l, newCalculator(v), nil
}

// parseDate reads YYYY-MM-DD as midnight in loc; empty means today in loc
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
