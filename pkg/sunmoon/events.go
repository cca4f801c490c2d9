package sunmoon

import (
	"fmt"
	"strings"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/solar"
)

// EventKind names one of the nine daily solar events
type EventKind int

const (
	AstronomicalDawn EventKind = iota
	NauticalDawn
	CivilDawn
	Sunrise
	SolarNoon
	Sunset
	CivilDusk
	NauticalDusk
	AstronomicalDusk
)

// EventKinds lists every kind in the order the events happen during a day
var EventKinds = []EventKind{
	AstronomicalDawn, NauticalDawn, CivilDawn, Sunrise, SolarNoon,
	Sunset, CivilDusk, NauticalDusk, AstronomicalDusk,
}

// eventSpec is the depression and direction of a rise/set kind, and the
// clock time substituted when the event does not happen.
type eventSpec struct {
	name       string
	depression float64
	direction  solar.Direction
	hour       int
	minute     int
}

var eventSpecs = map[EventKind]eventSpec{
	Sunrise:          {"sunrise", solar.StandardDepression, solar.Rise, 6, 0},
	Sunset:           {"sunset", solar.StandardDepression, solar.Set, 18, 0},
	CivilDawn:        {"civil_dawn", solar.CivilDepression, solar.Rise, 5, 30},
	CivilDusk:        {"civil_dusk", solar.CivilDepression, solar.Set, 18, 30},
	NauticalDawn:     {"nautical_dawn", solar.NauticalDepression, solar.Rise, 5, 0},
	NauticalDusk:     {"nautical_dusk", solar.NauticalDepression, solar.Set, 19, 0},
	AstronomicalDawn: {"astronomical_dawn", solar.AstronomicalDepression, solar.Rise, 4, 30},
	AstronomicalDusk: {"astronomical_dusk", solar.AstronomicalDepression, solar.Set, 19, 30},
}

func (k EventKind) String() string {
	if k == SolarNoon {
		return "solar_noon"
	}
	if spec, ok := eventSpecs[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Title is the human readable name, e.g. "Civil Dawn"
func (k EventKind) Title() string {
	words := strings.Split(k.String(), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ParseEventKind is the inverse of EventKind.String
func ParseEventKind(s string) (EventKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range EventKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown solar event %q", s)
}

// Event is the outcome of a solar event computation. An event that happens
// carries only Time. An event that does not happen carries NoEvent, and also
// Time when a fallback time was requested.
type Event struct {
	Time    time.Time
	NoEvent solar.NoEventCode
}

// HasTime reports whether the event carries an instant, real or fallback
func (e Event) HasTime() bool {
	return !e.Time.IsZero()
}

// Happened reports whether the event actually occurs on the date
func (e Event) Happened() bool {
	return e.NoEvent == "" && e.HasTime()
}

// fallbackTime is the substitute instant for a kind on date's civil day,
// one hour later when date is in daylight saving time.
func fallbackTime(date time.Time, spec eventSpec) time.Time {
	y, m, d := date.Date()
	t := time.Date(y, m, d, spec.hour, spec.minute, 0, 0, date.Location())
	if date.IsDST() {
		t = t.Add(time.Hour)
	}
	return t
}
