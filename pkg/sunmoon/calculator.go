// Package sunmoon is the public face of the library: it computes the daily
// solar events and the yearly moon phases for a location, applying the
// rounding, no-event fallback and formatting settings of a Calculator.
package sunmoon

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/solar"
)

// ErrNonFiniteCoordinate is returned for a NaN or infinite latitude or longitude
var ErrNonFiniteCoordinate = errors.New("coordinates must be finite numbers")

func checkCoordinates(coords ...float64) error {
	for _, v := range coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteCoordinate
		}
	}
	return nil
}

// Calculator computes events under a fixed set of Settings. It is immutable
// and safe for concurrent use.
type Calculator struct {
	settings Settings
	logger   *zap.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the logger used for debug output
func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Calculator with the given settings
func New(settings Settings, opts ...Option) *Calculator {
	c := &Calculator{
		settings: settings.clone(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns a copy of the calculator's settings
func (c *Calculator) Settings() Settings {
	return c.settings.clone()
}

// With returns a new Calculator with u applied to the settings
func (c *Calculator) With(u SettingsUpdate) *Calculator {
	return &Calculator{settings: c.settings.Apply(u), logger: c.logger}
}

func (c *Calculator) solarOptions() solar.Options {
	return solar.Options{RoundToNearestMinute: c.settings.RoundToNearestMinute}
}

func (c *Calculator) lunarOptions() lunar.Options {
	return lunar.Options{RoundToNearestMinute: c.settings.RoundToNearestMinute}
}

// Event computes one event of the given kind for the civil date of date at
// latitude lat and longitude lon, both in degrees with north and east
// positive. The result is in the location of date.
func (c *Calculator) Event(kind EventKind, date time.Time, lat, lon float64) (Event, error) {
	if kind == SolarNoon {
		return c.SolarNoon(date, lon)
	}
	if err := checkCoordinates(lat, lon); err != nil {
		return Event{}, fmt.Errorf("%s: %w", kind, err)
	}

	spec, ok := eventSpecs[kind]
	if !ok {
		return Event{}, fmt.Errorf("unknown solar event %d", int(kind))
	}

	r, err := solar.RiseSet(date, lat, lon, spec.direction, spec.depression, c.solarOptions())
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", kind, err)
	}
	if r.OK() {
		return Event{Time: r.Time}, nil
	}

	c.logger.Debug("no solar event",
		zap.Stringer("event", kind),
		zap.String("code", string(r.NoEvent)),
		zap.String("date", date.Format("2006-01-02")),
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lon))

	if !c.settings.ReturnTimeForNoEventCase {
		return Event{NoEvent: r.NoEvent}, nil
	}
	return Event{Time: fallbackTime(date, spec), NoEvent: r.NoEvent}, nil
}

// Sunrise is the moment the sun's upper limb rises above the horizon
func (c *Calculator) Sunrise(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(Sunrise, date, lat, lon)
}

// Sunset is the moment the sun's upper limb sets below the horizon
func (c *Calculator) Sunset(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(Sunset, date, lat, lon)
}

// CivilDawn is when the sun's centre rises to 6° below the horizon
func (c *Calculator) CivilDawn(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(CivilDawn, date, lat, lon)
}

// CivilDusk is when the sun's centre sets to 6° below the horizon
func (c *Calculator) CivilDusk(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(CivilDusk, date, lat, lon)
}

// NauticalDawn is when the sun's centre rises to 12° below the horizon
func (c *Calculator) NauticalDawn(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(NauticalDawn, date, lat, lon)
}

// NauticalDusk is when the sun's centre sets to 12° below the horizon
func (c *Calculator) NauticalDusk(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(NauticalDusk, date, lat, lon)
}

// AstronomicalDawn is when the sun's centre rises to 18° below the horizon
func (c *Calculator) AstronomicalDawn(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(AstronomicalDawn, date, lat, lon)
}

// AstronomicalDusk is when the sun's centre sets to 18° below the horizon
func (c *Calculator) AstronomicalDusk(date time.Time, lat, lon float64) (Event, error) {
	return c.Event(AstronomicalDusk, date, lat, lon)
}

// SolarNoon is the sun's transit of the meridian at longitude lon. Transit
// happens every day, so the event never carries a no-event code.
func (c *Calculator) SolarNoon(date time.Time, lon float64) (Event, error) {
	if err := checkCoordinates(lon); err != nil {
		return Event{}, fmt.Errorf("%s: %w", SolarNoon, err)
	}
	t, err := solar.Transit(date, lon, c.solarOptions())
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", SolarNoon, err)
	}
	return Event{Time: t}, nil
}

// YearMoonPhases returns every occurrence of phase in year, in loc (UTC when
// loc is nil), in chronological order.
func (c *Calculator) YearMoonPhases(year int, phase lunar.Phase, loc *time.Location) ([]time.Time, error) {
	return lunar.YearPhases(year, phase, loc, c.lunarOptions())
}

// YearAllMoonPhases returns all four principal phases in year, sorted by time
func (c *Calculator) YearAllMoonPhases(year int, loc *time.Location) ([]lunar.PhaseEvent, error) {
	return lunar.YearAllPhases(year, loc, c.lunarOptions())
}

// Format renders e with a time.Format layout. A fallback time gets the marker
// configured for its no-event code appended; an event with no time formats
// as the bare code.
func (c *Calculator) Format(e Event, layout string) string {
	if !e.HasTime() {
		return string(e.NoEvent)
	}
	s := e.Time.Format(layout)
	if e.NoEvent != "" {
		s += c.settings.DateFormatKeys[e.NoEvent]
	}
	return s
}
