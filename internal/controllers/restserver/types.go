package restserver

import (
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/almanac"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

type LocationResponse struct {
	Name      string  `json:"name" csv:"name"`
	Latitude  float64 `json:"latitude" csv:"latitude"`
	Longitude float64 `json:"longitude" csv:"longitude"`
	Timezone  string  `json:"timezone" csv:"timezone"`
}

type LocationsResponse []LocationResponse

func (r LocationsResponse) CSVRows() any { return []LocationResponse(r) }

type EventResponse struct {
	Event string `json:"event" csv:"event"`
	// Time is RFC 3339, empty when the event has no instant
	Time      string `json:"time,omitempty" csv:"time"`
	Formatted string `json:"formatted" csv:"formatted"`
	NoEvent   string `json:"no_event,omitempty" csv:"no_event"`
}

type SunResponse struct {
	Location  string          `json:"location,omitempty"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  string          `json:"timezone"`
	Date      string          `json:"date"`
	DayLength string          `json:"day_length"`
	Events    []EventResponse `json:"events"`
}

func (r SunResponse) CSVRows() any { return r.Events }

type PhaseResponse struct {
	Phase string `json:"phase" csv:"phase"`
	Time  string `json:"time" csv:"time"`
}

type MoonResponse struct {
	Year     int             `json:"year"`
	Timezone string          `json:"timezone"`
	Phases   []PhaseResponse `json:"phases"`
}

func (r MoonResponse) CSVRows() any { return r.Phases }

type StatsResponse struct {
	Days     int    `json:"days"`
	Mean     string `json:"mean"`
	StdDev   string `json:"std_dev"`
	Min      string `json:"min"`
	Max      string `json:"max"`
	Shortest string `json:"shortest"`
	Longest  string `json:"longest"`
	Change   string `json:"change"`
}

type AlmanacResponse struct {
	Location string         `json:"location"`
	Timezone string         `json:"timezone"`
	Source   string         `json:"source"`
	Days     []almanac.Row  `json:"days"`
	Stats    *StatsResponse `json:"day_length_stats,omitempty"`
}

func (r AlmanacResponse) CSVRows() any { return r.Days }

func newLocationResponse(l config.LocationData) LocationResponse {
	tz := l.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return LocationResponse{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude, Timezone: tz}
}

func newSunResponse(c *sunmoon.Calculator, name string, s sunmoon.DaySummary) SunResponse {
	r := SunResponse{
		Location:  name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  s.Date.Location().String(),
		Date:      s.Date.Format("2006-01-02"),
		DayLength: almanac.FormatDuration(s.DayLength()),
		Events:    make([]EventResponse, 0, len(s.Events)),
	}
	for _, e := range s.Events {
		er := EventResponse{
			Event:     e.Kind.String(),
			Formatted: c.Format(e.Event, time.RFC3339),
			NoEvent:   string(e.NoEvent),
		}
		if e.HasTime() {
			er.Time = e.Time.Format(time.RFC3339)
		}
		r.Events = append(r.Events, er)
	}
	return r
}

func newMoonResponse(year int, loc *time.Location, phases []lunar.PhaseEvent) MoonResponse {
	r := MoonResponse{
		Year:     year,
		Timezone: loc.String(),
		Phases:   make([]PhaseResponse, 0, len(phases)),
	}
	for _, p := range phases {
		r.Phases = append(r.Phases, PhaseResponse{Phase: p.Phase.String(), Time: p.Time.Format(time.RFC3339)})
	}
	return r
}

func newStatsResponse(s almanac.DayLengthStats) *StatsResponse {
	return &StatsResponse{
		Days:     s.Days,
		Mean:     almanac.FormatDuration(s.Mean),
		StdDev:   almanac.FormatDuration(s.StdDev),
		Min:      almanac.FormatDuration(s.Min),
		Max:      almanac.FormatDuration(s.Max),
		Shortest: s.Shortest.Format("2006-01-02"),
		Longest:  s.Longest.Format("2006-01-02"),
		Change:   s.Change.String(),
	}
}
