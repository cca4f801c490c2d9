package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Sync()
}

// newRootCmd builds the command tree. Every flag is also readable from the
// environment with a SUNMOON_ prefix, e.g. SUNMOON_ROUND_MINUTE=true.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("sunmoon")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "sunmoon",
		Short:         "Sun and moon event times from Meeus' algorithms",
		Long:          `sunmoon computes sunrise, sunset, twilight, solar noon and the principal moon phases for any place and date.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return log.Init(v.GetBool("debug"))
		},
	}

	pf := root.PersistentFlags()
	pf.Bool("debug", false, "Turn on debugging output")
	pf.Bool("round-minute", false, "Round event times to the nearest minute")
	pf.Bool("no-event-time", false, "Return a fixed fallback time, tagged with the reason, when an event does not happen")
	pf.String("config", "config.yaml", "Path to configuration source (YAML file or SQLite database)")
	pf.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}

	root.AddCommand(
		newSunCmd(v),
		newMoonCmd(v),
		newAlmanacCmd(v),
		newServeCmd(v),
	)
	return root
}

// settingsUpdate collects the settings given explicitly by flag or environment
func settingsUpdate(v *viper.Viper) sunmoon.SettingsUpdate {
	var u sunmoon.SettingsUpdate
	if v.IsSet("round-minute") {
		u.RoundToNearestMinute = sunmoon.Bool(v.GetBool("round-minute"))
	}
	if v.IsSet("no-event-time") {
		u.ReturnTimeForNoEventCase = sunmoon.Bool(v.GetBool("no-event-time"))
	}
	return u
}

func newCalculator(v *viper.Viper) *sunmoon.Calculator {
	s := sunmoon.DefaultSettings().Apply(settingsUpdate(v))
	return sunmoon.New(s, sunmoon.WithLogger(log.GetZapLogger()))
}

func newConfigProvider(v *viper.Viper) (config.ConfigProvider, error) {
	filename, _ := filepath.Abs(v.GetString("config"))

	switch backend := v.GetString("config-backend"); backend {
	case "yaml":
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := config.NewSQLiteProvider(filename, log.GetSugaredLogger())
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", backend)
	}
}
