package main

import (
	"fmt"
	"io"

	"github.com/chrissnell/meeussunmoon/pkg/almanac"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAlmanacCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "almanac",
		Short: "Tabulate solar events and moon phases over a range of dates",
		Example: `  sunmoon almanac --location london --from 2016-06-01 --to 2016-06-30
  sunmoon almanac --lat -77.846 --lon 166.676 --tz Antarctica/McMurdo --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlmanac(cmd, v)
		},
	}
	addPlaceFlags(cmd)
	f := cmd.Flags()
	f.String("from", "", "First date as YYYY-MM-DD (default today)")
	f.String("to", "", "Last date as YYYY-MM-DD (default six days after --from)")
	f.String("layout", almanac.DefaultLayout, "Go time layout for event times")
	f.String("format", "table", "Output format: table or csv")
	return cmd
}

func runAlmanac(cmd *cobra.Command, v *viper.Viper) error {
	format := v.GetString("format")
	if format != "table" && format != "csv" {
		return fmt.Errorf("unsupported format %q, use table or csv", format)
	}

	place, calc, err := resolvePlace(v)
	if err != nil {
		return err
	}
	loc, err := place.Location()
	if err != nil {
		return err
	}

	from, err := parseDate(v.GetString("from"), loc)
	if err != nil {
		return err
	}
	to := from.AddDate(0, 0, 6)
	if s := v.GetString("to"); s != "" {
		if to, err = parseDate(s, loc); err != nil {
			return err
		}
	}

	p := almanac.Place{Name: place.Name, Latitude: place.Latitude, Longitude: place.Longitude, Location: loc}
	a, err := almanac.Compute(calc, p, from, to)
	if err != nil {
		return err
	}
	a = a.WithLayout(v.GetString("layout"))

	out := cmd.OutOrStdout()
	if format == "csv" {
		return a.WriteCSV(out)
	}
	return renderAlmanac(out, a)
}

func renderAlmanac(out io.Writer, a *almanac.Almanac) error {
	fmt.Fprintf(out, "%s (%.4f, %.4f) %s\n\n", a.Place.Name, a.Place.Latitude, a.Place.Longitude, a.Place.Location)

	table := newTable(out, "Date", "Astro Dawn", "Nautical Dawn", "Civil Dawn", "Sunrise", "Noon",
		"Sunset", "Civil Dusk", "Nautical Dusk", "Astro Dusk", "Day Length", "Moon")
	for _, r := range a.Rows() {
		table.Append([]string{r.Date, r.AstronomicalDawn, r.NauticalDawn, r.CivilDawn, r.Sunrise, r.SolarNoon,
			r.Sunset, r.CivilDusk, r.NauticalDusk, r.AstronomicalDusk, r.DayLength, r.MoonPhase})
	}
	table.Render()

	stats, err := a.DayLengthStats()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	st := newTable(out, "Day Length", "Value")
	st.AppendBulk([][]string{
		{"Mean", almanac.FormatDuration(stats.Mean)},
		{"Std Dev", almanac.FormatDuration(stats.StdDev)},
		{"Shortest", fmt.Sprintf("%s on %s", almanac.FormatDuration(stats.Min), stats.Shortest.Format(dateLayout))},
		{"Longest", fmt.Sprintf("%s on %s", almanac.FormatDuration(stats.Max), stats.Longest.Format(dateLayout))},
		{"Change", stats.Change.String()},
	})
	st.Render()
	return nil
}
