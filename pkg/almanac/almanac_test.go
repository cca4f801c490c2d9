package almanac

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func london(t *testing.T) Place {
	return Place{Name: "london", Latitude: 51.5074, Longitude: -0.1278, Location: mustLoad(t, "Europe/London")}
}

func mcmurdo(t *testing.T) Place {
	return Place{Name: "mcmurdo", Latitude: -77.83333333, Longitude: 166.6, Location: mustLoad(t, "Pacific/Auckland")}
}

func TestDates(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     int
		err      error
	}{
		{"single day", time.Date(2016, 6, 21, 0, 0, 0, 0, time.UTC), time.Date(2016, 6, 21, 23, 0, 0, 0, time.UTC), 1, nil},
		{"leap february", time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC), 29, nil},
		{"whole year", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC), 366, nil},
		{"reversed", time.Date(2016, 6, 22, 0, 0, 0, 0, time.UTC), time.Date(2016, 6, 21, 0, 0, 0, 0, time.UTC), 0, ErrEmptyRange},
		{"too long", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), 0, ErrRangeTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := Dates(tt.from, tt.to, time.UTC)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, expected %v", err, tt.err)
			}
			if len(dates) != tt.want {
				t.Errorf("got %d dates, expected %d", len(dates), tt.want)
			}
		})
	}
}

func TestDatesAcrossDSTChange(t *testing.T) {
	loc := mustLoad(t, "Europe/London")
	dates, err := Dates(time.Date(2016, 3, 26, 0, 0, 0, 0, loc), time.Date(2016, 3, 28, 0, 0, 0, 0, loc), loc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2016-03-26", "2016-03-27", "2016-03-28"}
	for i, d := range dates {
		if got := d.Format("2006-01-02"); got != want[i] {
			t.Errorf("date %d = %s, expected %s", i, got, want[i])
		}
	}
}

func TestLondonMidsummer(t *testing.T) {
	c := sunmoon.New(sunmoon.DefaultSettings())
	p := london(t)

	a, err := Compute(c, p, time.Date(2016, 6, 19, 0, 0, 0, 0, p.Location), time.Date(2016, 6, 23, 0, 0, 0, 0, p.Location))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(a.Days) != 5 {
		t.Fatalf("got %d days, expected 5", len(a.Days))
	}

	rows := a.WithLayout("15:04").Rows()
	if rows[2].Date != "2016-06-21" || rows[2].Sunrise != "04:43" || rows[2].Sunset != "21:21" {
		t.Errorf("unexpected midsummer row %+v", rows[2])
	}
	if rows[2].AstronomicalDawn != "SUN_HIGH" {
		t.Errorf("astronomical dawn = %q, expected SUN_HIGH", rows[2].AstronomicalDawn)
	}
	if !strings.HasPrefix(rows[1].MoonPhase, "Full Moon 12:0") {
		t.Errorf("2016-06-20 moon phase = %q", rows[1].MoonPhase)
	}
	for _, i := range []int{0, 2, 3, 4} {
		if rows[i].MoonPhase != "" {
			t.Errorf("%s has moon phase %q", rows[i].Date, rows[i].MoonPhase)
		}
	}

	stats, err := a.DayLengthStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Days != 5 {
		t.Errorf("stats over %d days", stats.Days)
	}
	if !(stats.Min <= stats.Mean && stats.Mean <= stats.Max) {
		t.Errorf("mean %v outside [%v, %v]", stats.Mean, stats.Min, stats.Max)
	}
	if stats.StdDev > 15*time.Second {
		t.Errorf("std dev %v unexpectedly large near the solstice", stats.StdDev)
	}
	if d := stats.Longest.Day(); d < 19 || d > 22 {
		t.Errorf("longest day on the %d", d)
	}
	target := 16*time.Hour + 38*time.Minute + 24*time.Second
	if diff := stats.Max - target; diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("longest day length %v, expected about %v", stats.Max, target)
	}
}

func TestLondonDecemberShortestDay(t *testing.T) {
	c := sunmoon.New(sunmoon.DefaultSettings())
	p := london(t)

	a, err := Compute(c, p, time.Date(2016, 12, 1, 0, 0, 0, 0, p.Location), time.Date(2016, 12, 31, 0, 0, 0, 0, p.Location))
	if err != nil {
		t.Fatal(err)
	}
	stats, err := a.DayLengthStats()
	if err != nil {
		t.Fatal(err)
	}
	if d := stats.Shortest.Day(); d < 20 || d > 22 {
		t.Errorf("shortest day on the %d", d)
	}
	target := 7*time.Hour + 49*time.Minute + 45*time.Second
	if diff := stats.Min - target; diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("shortest day length %v, expected about %v", stats.Min, target)
	}

	phases := 0
	for _, d := range a.Days {
		phases += len(d.MoonPhases)
	}
	if phases != 4 {
		t.Errorf("got %d moon phases in December 2016, expected 4", phases)
	}
}

func TestAntarcticSummer(t *testing.T) {
	p := mcmurdo(t)
	from := time.Date(2016, 12, 20, 0, 0, 0, 0, p.Location)
	to := time.Date(2016, 12, 22, 0, 0, 0, 0, p.Location)

	t.Run("codes", func(t *testing.T) {
		a, err := Compute(sunmoon.New(sunmoon.DefaultSettings()), p, from, to)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range a.Rows() {
			if r.Sunrise != "SUN_HIGH" || r.Sunset != "SUN_HIGH" || r.DayLength != "24:00:00" {
				t.Errorf("unexpected row %+v", r)
			}
			if r.SolarNoon == "" || r.SolarNoon == "SUN_HIGH" {
				t.Errorf("solar noon should always have a time, got %q", r.SolarNoon)
			}
		}
		stats, err := a.DayLengthStats()
		if err != nil {
			t.Fatal(err)
		}
		if stats.Mean != 24*time.Hour || stats.StdDev != 0 || stats.Change != 0 {
			t.Errorf("unexpected polar day stats %+v", stats)
		}
	})

	t.Run("fallback times", func(t *testing.T) {
		settings := sunmoon.DefaultSettings().Apply(sunmoon.SettingsUpdate{
			ReturnTimeForNoEventCase: sunmoon.Bool(true),
		})
		a, err := Compute(sunmoon.New(settings), p, from, from)
		if err != nil {
			t.Fatal(err)
		}
		r := a.Rows()[0]
		if r.Sunrise != "07:00:00‡" || r.Sunset != "19:00:00‡" {
			t.Errorf("unexpected fallback row %+v", r)
		}
	})
}

func TestWriteCSV(t *testing.T) {
	c := sunmoon.New(sunmoon.DefaultSettings())
	p := london(t)
	a, err := Compute(c, p, time.Date(2016, 6, 20, 0, 0, 0, 0, p.Location), time.Date(2016, 6, 21, 0, 0, 0, 0, p.Location))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := a.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, expected header and 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "date,astronomical_dawn,nautical_dawn,civil_dawn,sunrise,solar_noon") {
		t.Errorf("unexpected header %q", lines[0])
	}

	var rows []Row
	if err := gocsv.UnmarshalString(buf.String(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || !strings.HasPrefix(rows[1].Sunrise, "04:43:") {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{24 * time.Hour, "24:00:00"},
		{16*time.Hour + 38*time.Minute + 24*time.Second, "16:38:24"},
		{7*time.Hour + 49*time.Minute + 44*time.Second + 600*time.Millisecond, "07:49:45"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, expected %q", tt.d, got, tt.want)
		}
	}
}

func TestEmptyStats(t *testing.T) {
	a, err := FromSummaries(sunmoon.New(sunmoon.DefaultSettings()), Place{Name: "nowhere"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.DayLengthStats(); err == nil {
		t.Error("expected an error for an empty almanac")
	}
}
