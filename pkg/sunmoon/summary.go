package sunmoon

import (
	"fmt"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/solar"
)

// KindEvent is an Event labelled with its kind
type KindEvent struct {
	Kind EventKind
	Event
}

// DaySummary holds all nine solar events of one civil date at one place
type DaySummary struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	Events    []KindEvent
}

// Get returns the event of the given kind
func (d DaySummary) Get(kind EventKind) (Event, bool) {
	for _, e := range d.Events {
		if e.Kind == kind {
			return e.Event, true
		}
	}
	return Event{}, false
}

// DayLength is the time between sunrise and sunset. It is zero when the sun
// does not rise, and 24h when it does not set.
func (d DaySummary) DayLength() time.Duration {
	rise, _ := d.Get(Sunrise)
	set, _ := d.Get(Sunset)
	if rise.Happened() && set.Happened() {
		return set.Time.Sub(rise.Time)
	}
	if rise.NoEvent == solar.SunHigh {
		return 24 * time.Hour
	}
	return 0
}

// DaySummary computes every event in EventKinds for the civil date of date
func (c *Calculator) DaySummary(date time.Time, lat, lon float64) (DaySummary, error) {
	y, m, d := date.Date()
	summary := DaySummary{
		Date:      time.Date(y, m, d, 0, 0, 0, 0, date.Location()),
		Latitude:  lat,
		Longitude: lon,
		Events:    make([]KindEvent, 0, len(EventKinds)),
	}

	for _, kind := range EventKinds {
		e, err := c.Event(kind, date, lat, lon)
		if err != nil {
			return DaySummary{}, fmt.Errorf("day summary for %s: %w", date.Format("2006-01-02"), err)
		}
		summary.Events = append(summary.Events, KindEvent{Kind: kind, Event: e})
	}

	return summary, nil
}
