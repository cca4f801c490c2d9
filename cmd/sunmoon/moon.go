package main

import (
	"fmt"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMoonCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "moon",
		Short:   "List the principal moon phases of a year",
		Example: `  sunmoon moon --year 2016 --phase full --tz America/New_York`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoon(cmd, v)
		},
	}
	cmd.Flags().Int("year", time.Now().Year(), "Calendar year")
	cmd.Flags().String("phase", "", "Only this phase: new, first, full or last (default all)")
	cmd.Flags().String("tz", "", "IANA time zone of the results (default UTC)")
	return cmd
}

func runMoon(cmd *cobra.Command, v *viper.Viper) error {
	loc := time.UTC
	if tz := v.GetString("tz"); tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", tz, err)
		}
	}

	year := v.GetInt("year")
	calc := newCalculator(v)

	var phases []lunar.PhaseEvent
	if name := v.GetString("phase"); name != "" {
		phase, err := lunar.ParsePhase(name)
		if err != nil {
			return err
		}
		times, err := calc.YearMoonPhases(year, phase, loc)
		if err != nil {
			return err
		}
		for _, t := range times {
			phases = append(phases, lunar.PhaseEvent{Time: t, Phase: phase})
		}
	} else {
		var err error
		if phases, err = calc.YearAllMoonPhases(year, loc); err != nil {
			return err
		}
	}

	table := newTable(cmd.OutOrStdout(), "Phase", "Time")
	for _, p := range phases {
		table.Append([]string{p.Phase.String(), p.Time.Format("2006-01-02 15:04:05 MST")})
	}
	table.Render()
	return nil
}
