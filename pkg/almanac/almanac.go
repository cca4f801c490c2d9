// Package almanac builds day-by-day tables of solar events and moon phases
// for a place, with CSV export and day-length statistics.
package almanac

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

// MaxDays bounds the length of a single almanac
const MaxDays = 3660

// DefaultLayout is the time.Format layout used for event columns
const DefaultLayout = "15:04:05"

var (
	ErrEmptyRange   = errors.New("almanac range ends before it starts")
	ErrRangeTooLong = fmt.Errorf("almanac range exceeds %d days", MaxDays)
)

// Place is a named location with its time zone
type Place struct {
	Name      string
	Latitude  float64
	Longitude float64
	Location  *time.Location
}

// Day is one civil date of an almanac
type Day struct {
	sunmoon.DaySummary
	// MoonPhases are the principal phases falling on this date
	MoonPhases []lunar.PhaseEvent
}

// Almanac is a contiguous run of days at one place
type Almanac struct {
	Place Place
	Days  []Day

	calc   *sunmoon.Calculator
	layout string
}

// Dates returns every civil date from from to to inclusive, as midnights in loc
func Dates(from, to time.Time, loc *time.Location) ([]time.Time, error) {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil, ErrEmptyRange
	}

	n := int(end.Sub(start).Hours()/24) + 1
	if n > MaxDays {
		return nil, ErrRangeTooLong
	}

	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = time.Date(fy, fm, fd+i, 0, 0, 0, 0, loc)
	}
	return dates, nil
}

// Compute builds the almanac for the civil dates from..to inclusive
func Compute(c *sunmoon.Calculator, p Place, from, to time.Time) (*Almanac, error) {
	if p.Location == nil {
		p.Location = time.UTC
	}

	dates, err := Dates(from, to, p.Location)
	if err != nil {
		return nil, err
	}

	summaries := make([]sunmoon.DaySummary, 0, len(dates))
	for _, date := range dates {
		s, err := c.DaySummary(date, p.Latitude, p.Longitude)
		if err != nil {
			return nil, fmt.Errorf("almanac for %s: %w", p.Name, err)
		}
		summaries = append(summaries, s)
	}

	return FromSummaries(c, p, summaries)
}

// FromSummaries assembles an almanac from day summaries computed earlier,
// attaching the moon phases of each date.
func FromSummaries(c *sunmoon.Calculator, p Place, summaries []sunmoon.DaySummary) (*Almanac, error) {
	if p.Location == nil {
		p.Location = time.UTC
	}

	a := &Almanac{
		Place:  p,
		Days:   make([]Day, len(summaries)),
		calc:   c,
		layout: DefaultLayout,
	}
	if len(summaries) == 0 {
		return a, nil
	}

	byDate := make(map[string][]lunar.PhaseEvent)
	first := summaries[0].Date.Year()
	last := summaries[len(summaries)-1].Date.Year()
	for year := first; year <= last; year++ {
		phases, err := c.YearAllMoonPhases(year, p.Location)
		if err != nil {
			return nil, fmt.Errorf("almanac moon phases for %d: %w", year, err)
		}
		for _, ph := range phases {
			key := ph.Time.Format("2006-01-02")
			byDate[key] = append(byDate[key], ph)
		}
	}

	for i, s := range summaries {
		a.Days[i] = Day{
			DaySummary: s,
			MoonPhases: byDate[s.Date.Format("2006-01-02")],
		}
	}
	return a, nil
}

// WithLayout returns a copy of a that formats event times with layout
func (a *Almanac) WithLayout(layout string) *Almanac {
	out := *a
	out.layout = layout
	return &out
}

// Row is the flat, printable form of a Day
type Row struct {
	Date             string `json:"date" csv:"date"`
	AstronomicalDawn string `json:"astronomical_dawn" csv:"astronomical_dawn"`
	NauticalDawn     string `json:"nautical_dawn" csv:"nautical_dawn"`
	CivilDawn        string `json:"civil_dawn" csv:"civil_dawn"`
	Sunrise          string `json:"sunrise" csv:"sunrise"`
	SolarNoon        string `json:"solar_noon" csv:"solar_noon"`
	Sunset           string `json:"sunset" csv:"sunset"`
	CivilDusk        string `json:"civil_dusk" csv:"civil_dusk"`
	NauticalDusk     string `json:"nautical_dusk" csv:"nautical_dusk"`
	AstronomicalDusk string `json:"astronomical_dusk" csv:"astronomical_dusk"`
	DayLength        string `json:"day_length" csv:"day_length"`
	MoonPhase        string `json:"moon_phase,omitempty" csv:"moon_phase"`
}

// Rows formats every day. No-event markers follow the calculator settings.
func (a *Almanac) Rows() []Row {
	rows := make([]Row, len(a.Days))
	for i, d := range a.Days {
		rows[i] = a.row(d)
	}
	return rows
}

// CSVRows lets an almanac be served as CSV
func (a *Almanac) CSVRows() any {
	return a.Rows()
}

func (a *Almanac) row(d Day) Row {
	r := Row{
		Date:      d.Date.Format("2006-01-02"),
		DayLength: FormatDuration(d.DayLength()),
	}

	for _, e := range d.Events {
		s := a.calc.Format(e.Event, a.layout)
		switch e.Kind {
		case sunmoon.AstronomicalDawn:
			r.AstronomicalDawn = s
		case sunmoon.NauticalDawn:
			r.NauticalDawn = s
		case sunmoon.CivilDawn:
			r.CivilDawn = s
		case sunmoon.Sunrise:
			r.Sunrise = s
		case sunmoon.SolarNoon:
			r.SolarNoon = s
		case sunmoon.Sunset:
			r.Sunset = s
		case sunmoon.CivilDusk:
			r.CivilDusk = s
		case sunmoon.NauticalDusk:
			r.NauticalDusk = s
		case sunmoon.AstronomicalDusk:
			r.AstronomicalDusk = s
		}
	}

	phases := make([]string, len(d.MoonPhases))
	for i, ph := range d.MoonPhases {
		phases[i] = ph.Phase.String() + " " + ph.Time.Format(a.layout)
	}
	r.MoonPhase = strings.Join(phases, "; ")
	return r
}

// WriteCSV writes the rows with a header line
func (a *Almanac) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(a.Rows(), w)
}

// FormatDuration renders d as hh:mm:ss, so a full day reads 24:00:00
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}
