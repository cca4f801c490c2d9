package sunmoon

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/solar"
	"github.com/chrissnell/meeussunmoon/pkg/timescale"
)

const (
	antarcticLat = -77.83333333
	antarcticLon = 166.6
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	return loc
}

func TestNoEventCodes(t *testing.T) {
	auckland := mustLoad(t, "Pacific/Auckland")
	c := New(DefaultSettings())

	summer := time.Date(2016, 1, 1, 12, 0, 0, 0, auckland)
	winter := time.Date(2016, 7, 1, 0, 0, 0, 0, auckland)

	for _, kind := range []EventKind{Sunrise, Sunset} {
		e, err := c.Event(kind, summer, antarcticLat, antarcticLon)
		if err != nil {
			t.Fatal(err)
		}
		if e.NoEvent != solar.SunHigh || e.HasTime() {
			t.Errorf("summer %s: got %+v, expected bare SUN_HIGH", kind, e)
		}

		e, err = c.Event(kind, winter, antarcticLat, antarcticLon)
		if err != nil {
			t.Fatal(err)
		}
		if e.NoEvent != solar.SunLow || e.HasTime() {
			t.Errorf("winter %s: got %+v, expected bare SUN_LOW", kind, e)
		}
	}
}

func TestNoEventFallbackTable(t *testing.T) {
	auckland := mustLoad(t, "Pacific/Auckland")
	c := New(DefaultSettings().Apply(SettingsUpdate{ReturnTimeForNoEventCase: Bool(true)}))

	summer := time.Date(2016, 1, 1, 12, 0, 0, 0, auckland)
	winter := time.Date(2016, 7, 1, 0, 0, 0, 0, auckland)

	tests := []struct {
		name     string
		date     time.Time
		kind     EventKind
		expected string
	}{
		// summer is daylight saving time in New Zealand
		{"summer sunrise", summer, Sunrise, "2016-01-01 07:00‡"},
		{"summer sunset", summer, Sunset, "2016-01-01 19:00‡"},
		{"summer civil dawn", summer, CivilDawn, "2016-01-01 06:30‡"},
		{"summer civil dusk", summer, CivilDusk, "2016-01-01 19:30‡"},
		{"summer nautical dawn", summer, NauticalDawn, "2016-01-01 06:00‡"},
		{"summer nautical dusk", summer, NauticalDusk, "2016-01-01 20:00‡"},
		{"summer astronomical dawn", summer, AstronomicalDawn, "2016-01-01 05:30‡"},
		{"summer astronomical dusk", summer, AstronomicalDusk, "2016-01-01 20:30‡"},
		{"winter sunrise", winter, Sunrise, "2016-07-01 06:00†"},
		{"winter sunset", winter, Sunset, "2016-07-01 18:00†"},
		{"winter civil dawn", winter, CivilDawn, "2016-07-01 05:30†"},
		{"winter civil dusk", winter, CivilDusk, "2016-07-01 18:30†"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := c.Event(tt.kind, tt.date, antarcticLat, antarcticLon)
			if err != nil {
				t.Fatal(err)
			}
			if e.Happened() {
				t.Fatalf("expected a fallback, got a real event at %v", e.Time)
			}
			if got := c.Format(e, "2006-01-02 15:04"); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
			if e.Time.Location() != auckland {
				t.Errorf("fallback in %v, expected %v", e.Time.Location(), auckland)
			}
		})
	}

	// Nautical twilight does happen in the Antarctic winter
	e, err := c.NauticalDawn(winter, antarcticLat, antarcticLon)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Happened() {
		t.Errorf("winter nautical dawn: expected a real event, got %+v", e)
	}
}

func TestFallbackTimeChangeoverDay(t *testing.T) {
	auckland := mustLoad(t, "Pacific/Auckland")
	spec := eventSpecs[Sunrise]

	// Daylight saving time in New Zealand ended at 03:00 on 2016-04-03
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"before the change", time.Date(2016, 4, 3, 1, 0, 0, 0, auckland), "07:00"},
		{"after the change", time.Date(2016, 4, 3, 12, 0, 0, 0, auckland), "06:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackTime(tt.date, spec).Format("15:04"); got != tt.expected {
				t.Errorf("got %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestFormatMarkers(t *testing.T) {
	auckland := mustLoad(t, "Pacific/Auckland")
	summer := time.Date(2016, 1, 1, 12, 0, 0, 0, auckland)
	winter := time.Date(2016, 7, 1, 0, 0, 0, 0, auckland)
	base := DefaultSettings().Apply(SettingsUpdate{ReturnTimeForNoEventCase: Bool(true)})

	tests := []struct {
		name     string
		keys     map[solar.NoEventCode]string
		date     time.Time
		expected string
	}{
		{"default high", nil, summer, "07:00‡"},
		{"default low", nil, winter, "06:00†"},
		{"empty high marker", map[solar.NoEventCode]string{solar.SunHigh: "", solar.SunLow: "†"}, summer, "07:00"},
		{"custom high", map[solar.NoEventCode]string{solar.SunHigh: " (High)", solar.SunLow: " (Low)"}, summer, "07:00 (High)"},
		{"custom low", map[solar.NoEventCode]string{solar.SunHigh: " (High)", solar.SunLow: " (Low)"}, winter, "06:00 (Low)"},
		{"missing marker", map[solar.NoEventCode]string{}, winter, "06:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(base.Apply(SettingsUpdate{DateFormatKeys: tt.keys}))
			e, err := c.Sunrise(tt.date, antarcticLat, antarcticLon)
			if err != nil {
				t.Fatal(err)
			}
			if got := c.Format(e, "15:04"); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}

	london := mustLoad(t, "Europe/London")
	c := New(DefaultSettings())
	e, err := c.Sunrise(time.Date(2016, 6, 21, 0, 0, 0, 0, london), 51.5074, -0.1278)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Format(e, "15:04"); got != "04:43" {
		t.Errorf("untagged sunrise formatted as %q, expected 04:43", got)
	}

	if got := c.Format(Event{NoEvent: solar.SunLow}, "15:04"); got != "SUN_LOW" {
		t.Errorf("code-only event formatted as %q", got)
	}
}

func TestSettingsApply(t *testing.T) {
	s := DefaultSettings()

	if got := s.Apply(SettingsUpdate{}); !reflect.DeepEqual(got, s) {
		t.Errorf("empty update changed settings: %+v", got)
	}

	updated := s.Apply(SettingsUpdate{RoundToNearestMinute: Bool(true)})
	if !updated.RoundToNearestMinute || updated.ReturnTimeForNoEventCase {
		t.Errorf("unexpected settings after update: %+v", updated)
	}
	if s.RoundToNearestMinute {
		t.Error("Apply modified its receiver")
	}

	keys := map[solar.NoEventCode]string{solar.SunHigh: "^"}
	withKeys := s.Apply(SettingsUpdate{DateFormatKeys: keys})
	keys[solar.SunHigh] = "changed"
	if withKeys.DateFormatKeys[solar.SunHigh] != "^" {
		t.Error("settings share the caller's marker map")
	}
	if _, ok := withKeys.DateFormatKeys[solar.SunLow]; ok {
		t.Error("marker table should be replaced, not merged")
	}
}

func TestConfigureDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(New(DefaultSettings()))
	Configure(SettingsUpdate{RoundToNearestMinute: Bool(true)})
	before := Default().Settings()

	Configure(SettingsUpdate{})
	if after := Default().Settings(); !reflect.DeepEqual(before, after) {
		t.Errorf("empty Configure changed settings from %+v to %+v", before, after)
	}
	if !Default().Settings().RoundToNearestMinute {
		t.Error("Configure did not apply RoundToNearestMinute")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			Configure(SettingsUpdate{ReturnTimeForNoEventCase: Bool(i%2 == 0)})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = Default().SolarNoon(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC), 0)
		}()
	}
	wg.Wait()
}

func TestDaySummaryOrdering(t *testing.T) {
	london := mustLoad(t, "Europe/London")
	c := New(DefaultSettings())

	for day := 0; day < 366; day += 7 {
		date := time.Date(2016, 1, 1, 0, 0, 0, 0, london).AddDate(0, 0, day)
		summary, err := c.DaySummary(date, 51.5074, -0.1278)
		if err != nil {
			t.Fatal(err)
		}
		if len(summary.Events) != len(EventKinds) {
			t.Fatalf("%s: %d events", date.Format("2006-01-02"), len(summary.Events))
		}

		var last time.Time
		for _, e := range summary.Events {
			if !e.Happened() {
				continue
			}
			if !last.IsZero() && !last.Before(e.Time) {
				t.Errorf("%s: %s at %v is not after %v", date.Format("2006-01-02"), e.Kind, e.Time, last)
			}
			last = e.Time
		}

		rise, _ := summary.Get(Sunrise)
		noon, _ := summary.Get(SolarNoon)
		set, _ := summary.Get(Sunset)
		if !(rise.Time.Before(noon.Time) && noon.Time.Before(set.Time)) {
			t.Errorf("%s: sunrise %v, noon %v, sunset %v out of order", date.Format("2006-01-02"), rise.Time, noon.Time, set.Time)
		}
	}

	midsummer, err := c.DaySummary(time.Date(2016, 6, 21, 0, 0, 0, 0, london), 51.5074, -0.1278)
	if err != nil {
		t.Fatal(err)
	}
	if dawn, _ := midsummer.Get(AstronomicalDawn); dawn.NoEvent != solar.SunHigh {
		t.Errorf("midsummer astronomical dawn: %+v, expected SUN_HIGH", dawn)
	}
	expected := 16*time.Hour + 38*time.Minute + 24*time.Second
	if d := midsummer.DayLength() - expected; d < -5*time.Second || d > 5*time.Second {
		t.Errorf("midsummer day length %v, expected about %v", midsummer.DayLength(), expected)
	}
}

func TestDomainErrorPropagates(t *testing.T) {
	c := New(DefaultSettings())
	date := time.Date(-2000, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := c.Sunrise(date, 0, 0); !errors.Is(err, timescale.ErrDeltaTOutOfRange) {
		t.Errorf("Sunrise: expected ErrDeltaTOutOfRange, got %v", err)
	}
	if _, err := c.SolarNoon(date, 0); !errors.Is(err, timescale.ErrDeltaTOutOfRange) {
		t.Errorf("SolarNoon: expected ErrDeltaTOutOfRange, got %v", err)
	}
	if _, err := c.DaySummary(date, 0, 0); !errors.Is(err, timescale.ErrDeltaTOutOfRange) {
		t.Errorf("DaySummary: expected ErrDeltaTOutOfRange, got %v", err)
	}
}

func TestNonFiniteCoordinates(t *testing.T) {
	c := New(DefaultSettings())
	date := time.Date(2016, 6, 21, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"NaN latitude", math.NaN(), 0},
		{"NaN longitude", 0, math.NaN()},
		{"infinite longitude", 0, math.Inf(1)},
		{"infinite latitude", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Sunrise(date, tt.lat, tt.lon); !errors.Is(err, ErrNonFiniteCoordinate) {
				t.Errorf("Sunrise: expected ErrNonFiniteCoordinate, got %v", err)
			}
			if _, err := c.DaySummary(date, tt.lat, tt.lon); !errors.Is(err, ErrNonFiniteCoordinate) {
				t.Errorf("DaySummary: expected ErrNonFiniteCoordinate, got %v", err)
			}
		})
	}

	if _, err := c.SolarNoon(date, math.NaN()); !errors.Is(err, ErrNonFiniteCoordinate) {
		t.Errorf("SolarNoon: expected ErrNonFiniteCoordinate, got %v", err)
	}
}

func TestMoonPhasesUseSettings(t *testing.T) {
	c := New(DefaultSettings().Apply(SettingsUpdate{RoundToNearestMinute: Bool(true)}))

	fulls, err := c.YearMoonPhases(2016, lunar.Full, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(fulls) != 12 {
		t.Fatalf("got %d full moons", len(fulls))
	}
	if got := fulls[0].Format("2006-01-02 15:04:05"); got != "2016-01-24 01:46:00" {
		t.Errorf("first full moon %s", got)
	}

	all, err := c.YearAllMoonPhases(2016, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 50 {
		t.Errorf("got %d phases in 2016, expected 50", len(all))
	}
}

func TestEventKindNames(t *testing.T) {
	for _, kind := range EventKinds {
		parsed, err := ParseEventKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseEventKind(%q) = %v, %v", kind.String(), parsed, err)
		}
	}
	if got := CivilDawn.Title(); got != "Civil Dawn" {
		t.Errorf("CivilDawn.Title() = %q", got)
	}
	if _, err := ParseEventKind("moonrise"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
