package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

const testConfig = `
locations:
  - name: london
    latitude: 51.5074
    longitude: -0.1278
    timezone: Europe/London
  - name: honolulu
    latitude: 21.3069
    longitude: -157.8583
    timezone: Pacific/Honolulu
rest:
  listen-addr: 127.0.0.1
  port: 18080
`

type fakeStore struct {
	days      []sunmoon.DaySummary
	phases    []lunar.PhaseEvent
	dayCalls  int
	moonCalls int
}

func (f *fakeStore) LoadDays(location string, loc *time.Location, from, to time.Time) ([]sunmoon.DaySummary, error) {
	f.dayCalls++
	return f.days, nil
}

func (f *fakeStore) LoadMoonPhases(year int, loc *time.Location) ([]lunar.PhaseEvent, error) {
	f.moonCalls++
	return f.phases, nil
}

func newTestController(t *testing.T, store AlmanacStore) *Controller {
	t.Helper()
	if _, err := time.LoadLocation("Europe/London"); err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctrl, err := NewController(ctx, &sync.WaitGroup{}, config.NewYAMLProvider(path), sunmoon.New(sunmoon.DefaultSettings()), store, nil)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

func get(t *testing.T, ctrl *Controller, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestControllerDefaults(t *testing.T) {
	ctrl := newTestController(t, nil)
	if ctrl.Server.Addr != "127.0.0.1:18080" {
		t.Errorf("Addr = %q", ctrl.Server.Addr)
	}
}

func TestStatusCodes(t *testing.T) {
	ctrl := newTestController(t, nil)

	tests := []struct {
		target string
		status int
	}{
		{"/api/locations", http.StatusOK},
		{"/api/locations?format=xml", http.StatusBadRequest},
		{"/api/sun/london?date=2016-06-21", http.StatusOK},
		{"/api/sun/atlantis?date=2016-06-21", http.StatusNotFound},
		{"/api/sun/london?date=21-06-2016", http.StatusBadRequest},
		{"/api/sun/london?date=3001-01-01", http.StatusUnprocessableEntity},
		{"/api/sun?lat=21.3069&lon=-157.8583&tz=Pacific/Honolulu&date=2016-01-01", http.StatusOK},
		{"/api/sun?lon=0", http.StatusBadRequest},
		{"/api/sun?lat=north&lon=0", http.StatusBadRequest},
		{"/api/sun?lat=91&lon=0", http.StatusBadRequest},
		{"/api/sun?lat=NaN&lon=0&date=2016-06-21", http.StatusBadRequest},
		{"/api/sun?lat=0&lon=NaN&date=2016-06-21", http.StatusBadRequest},
		{"/api/sun?lat=0&lon=Inf&date=2016-06-21", http.StatusBadRequest},
		{"/api/sun?lat=-Inf&lon=0&date=2016-06-21", http.StatusBadRequest},
		{"/api/sun?lat=0&lon=0&tz=Mars/Olympus", http.StatusBadRequest},
		{"/api/moon/2016", http.StatusOK},
		{"/api/moon/twenty", http.StatusBadRequest},
		{"/api/moon/2016?phase=blue", http.StatusBadRequest},
		{"/api/moon/2016?tz=Nowhere/Special", http.StatusBadRequest},
		{"/api/moon/3001", http.StatusUnprocessableEntity},
		{"/api/almanac/london?from=2016-06-20&to=2016-06-21", http.StatusOK},
		{"/api/almanac/london?from=2016-06-21&to=2016-06-20", http.StatusBadRequest},
		{"/api/almanac/london?from=2000-01-01&to=2020-01-01", http.StatusBadRequest},
		{"/api/almanac/atlantis", http.StatusNotFound},
		{"/api/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, ctrl, tt.target)
			if rec.Code != tt.status {
				t.Errorf("status = %d, expected %d; body %q", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestGetLocations(t *testing.T) {
	ctrl := newTestController(t, nil)

	var got []LocationResponse
	decode(t, get(t, ctrl, "/api/locations"), &got)
	if len(got) != 2 || got[0].Name != "honolulu" || got[1].Timezone != "Europe/London" {
		t.Errorf("unexpected locations %+v", got)
	}

	rec := get(t, ctrl, "/api/locations?format=csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 || lines[0] != "name,latitude,longitude,timezone" {
		t.Errorf("unexpected CSV %q", rec.Body.String())
	}
}

func TestGetSun(t *testing.T) {
	ctrl := newTestController(t, nil)

	t.Run("configured location", func(t *testing.T) {
		var got SunResponse
		decode(t, get(t, ctrl, "/api/sun/london?date=2016-06-21"), &got)

		if got.Location != "london" || got.Date != "2016-06-21" || got.Timezone != "Europe/London" {
			t.Errorf("unexpected header fields %+v", got)
		}
		if len(got.Events) != 9 {
			t.Fatalf("got %d events, expected 9", len(got.Events))
		}
		byName := make(map[string]EventResponse)
		for _, e := range got.Events {
			byName[e.Event] = e
		}
		if e := byName["sunrise"]; !strings.HasPrefix(e.Time, "2016-06-21T04:43:") || !strings.HasSuffix(e.Time, "+01:00") {
			t.Errorf("sunrise = %+v", e)
		}
		if e := byName["astronomical_dawn"]; e.NoEvent != "SUN_HIGH" || e.Time != "" || e.Formatted != "SUN_HIGH" {
			t.Errorf("astronomical dawn = %+v", e)
		}
		if got.Events[0].Event != "astronomical_dawn" || got.Events[8].Event != "astronomical_dusk" {
			t.Errorf("events out of order: %+v", got.Events)
		}
	})

	t.Run("coordinates", func(t *testing.T) {
		var got SunResponse
		decode(t, get(t, ctrl, "/api/sun?lat=21.3069&lon=-157.8583&tz=Pacific/Honolulu&date=2016-01-01"), &got)
		for _, e := range got.Events {
			if e.Event == "sunrise" && !strings.HasPrefix(e.Time, "2016-01-01T07:0") {
				t.Errorf("sunrise = %+v", e)
			}
			if e.Event == "solar_noon" && !strings.HasSuffix(e.Time, "-10:00") {
				t.Errorf("solar noon not in Honolulu time: %+v", e)
			}
		}
	})

	t.Run("msgpack", func(t *testing.T) {
		rec := get(t, ctrl, "/api/sun/london?date=2016-06-21&format=msgpack")
		if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}

func TestGetMoonPhases(t *testing.T) {
	ctrl := newTestController(t, nil)

	var all MoonResponse
	decode(t, get(t, ctrl, "/api/moon/2016"), &all)
	if len(all.Phases) != 50 || all.Timezone != "UTC" {
		t.Errorf("got %d phases in %s, expected 50 in UTC", len(all.Phases), all.Timezone)
	}

	var full MoonResponse
	decode(t, get(t, ctrl, "/api/moon/2016?phase=full&tz=America/New_York"), &full)
	if len(full.Phases) != 12 {
		t.Fatalf("got %d full moons, expected 12", len(full.Phases))
	}
	if !strings.HasPrefix(full.Phases[0].Time, "2016-01-23T20:4") || full.Phases[0].Phase != "Full Moon" {
		t.Errorf("first full moon = %+v", full.Phases[0])
	}
}

func TestGetAlmanac(t *testing.T) {
	t.Run("computed", func(t *testing.T) {
		ctrl := newTestController(t, nil)
		var got AlmanacResponse
		decode(t, get(t, ctrl, "/api/almanac/london?from=2016-06-20&to=2016-06-21"), &got)
		if got.Source != "computed" || len(got.Days) != 2 {
			t.Fatalf("unexpected almanac %+v", got)
		}
		if got.Stats == nil || got.Stats.Days != 2 {
			t.Errorf("missing stats: %+v", got.Stats)
		}
		if !strings.HasPrefix(got.Days[0].MoonPhase, "Full Moon") {
			t.Errorf("2016-06-20 moon phase = %q", got.Days[0].MoonPhase)
		}
	})

	t.Run("default range", func(t *testing.T) {
		ctrl := newTestController(t, nil)
		var got AlmanacResponse
		decode(t, get(t, ctrl, "/api/almanac/london?from=2016-06-20"), &got)
		if len(got.Days) != defaultAlmanacDays {
			t.Errorf("got %d days, expected %d", len(got.Days), defaultAlmanacDays)
		}
	})

	t.Run("csv", func(t *testing.T) {
		ctrl := newTestController(t, nil)
		rec := get(t, ctrl, "/api/almanac/london?from=2016-06-20&to=2016-06-21&format=csv")
		if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.HasPrefix(rec.Body.String(), "date,astronomical_dawn") {
			t.Errorf("unexpected CSV %q", rec.Body.String())
		}
	})

	t.Run("store", func(t *testing.T) {
		loc, _ := time.LoadLocation("Europe/London")
		calc := sunmoon.New(sunmoon.DefaultSettings())
		store := &fakeStore{}
		for _, d := range []int{20, 21} {
			s, err := calc.DaySummary(time.Date(2016, 6, d, 0, 0, 0, 0, loc), 51.5074, -0.1278)
			if err != nil {
				t.Fatal(err)
			}
			store.days = append(store.days, s)
		}

		ctrl := newTestController(t, store)
		var got AlmanacResponse
		decode(t, get(t, ctrl, "/api/almanac/london?from=2016-06-20&to=2016-06-21"), &got)
		if got.Source != "store" || store.dayCalls != 1 {
			t.Errorf("source = %q after %d store calls", got.Source, store.dayCalls)
		}

		// A partial range falls back to computing
		decode(t, get(t, ctrl, "/api/almanac/london?from=2016-06-20&to=2016-06-22"), &got)
		if got.Source != "computed" || len(got.Days) != 3 {
			t.Errorf("source = %q with %d days", got.Source, len(got.Days))
		}
	})

	t.Run("store moon phases", func(t *testing.T) {
		store := &fakeStore{phases: []lunar.PhaseEvent{{Time: time.Date(2016, 1, 2, 5, 30, 0, 0, time.UTC), Phase: lunar.LastQuarter}}}
		ctrl := newTestController(t, store)

		var got MoonResponse
		decode(t, get(t, ctrl, "/api/moon/2016"), &got)
		if len(got.Phases) != 1 || store.moonCalls != 1 {
			t.Errorf("store not used: %d phases, %d calls", len(got.Phases), store.moonCalls)
		}

		decode(t, get(t, ctrl, "/api/moon/2016?tz=America/New_York"), &got)
		if len(got.Phases) != 50 || store.moonCalls != 1 {
			t.Errorf("zoned request should be computed: %d phases, %d calls", len(got.Phases), store.moonCalls)
		}
	})
}
