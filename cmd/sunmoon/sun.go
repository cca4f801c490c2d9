package main

import (
	"fmt"

	"github.com/chrissnell/meeussunmoon/pkg/almanac"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sun",
		Short: "Show the solar events of one date",
		Example: `  sunmoon sun --lat 51.5074 --lon -0.1278 --tz Europe/London --date 2016-06-21
  sunmoon sun --location london --config config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSun(cmd, v)
		},
	}
	addPlaceFlags(cmd)
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().String("layout", almanac.DefaultLayout, "Go time layout for event times")
	return cmd
}

func runSun(cmd *cobra.Command, v *viper.Viper) error {
	place, calc, err := resolvePlace(v)
	if err != nil {
		return err
	}
	loc, err := place.Location()
	if err != nil {
		return err
	}
	date, err := parseDate(v.GetString("date"), loc)
	if err != nil {
		return err
	}

	summary, err := calc.DaySummary(date, place.Latitude, place.Longitude)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%.4f, %.4f) %s %s\n\n", place.Name, place.Latitude, place.Longitude, date.Format(dateLayout), loc)

	layout := v.GetString("layout")
	table := newTable(out, "Event", "Time")
	for _, e := range summary.Events {
		table.Append([]string{e.Kind.Title(), calc.Format(e.Event, layout)})
	}
	table.Render()

	fmt.Fprintf(out, "\nDay length: %s\n", almanac.FormatDuration(summary.DayLength()))
	return nil
}
