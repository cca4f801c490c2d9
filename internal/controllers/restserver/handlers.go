package restserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/almanac"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/responseformat"
	"github.com/chrissnell/meeussunmoon/pkg/timescale"
	"github.com/gorilla/mux"
)

// defaultAlmanacDays is the almanac length when no end date is given
const defaultAlmanacDays = 7

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// badRequest marks errors caused by the request parameters
type badRequest struct {
	err error
}

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func badRequestf(format string, args ...any) error {
	return badRequest{fmt.Errorf(format, args...)}
}

// GetLocations lists the configured locations
func (h *Handlers) GetLocations(w http.ResponseWriter, req *http.Request) {
	if !h.checkFormat(w, req) {
		return
	}

	resp := make(LocationsResponse, 0, len(h.controller.names))
	for _, name := range h.controller.names {
		resp = append(resp, newLocationResponse(h.controller.locations[name]))
	}
	h.write(w, req, resp)
}

// GetSunForLocation returns the solar events of one date at a configured location
func (h *Handlers) GetSunForLocation(w http.ResponseWriter, req *http.Request) {
	if !h.checkFormat(w, req) {
		return
	}

	name := mux.Vars(req)["location"]
	l, loc, err := h.controller.location(name)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	date, err := parseDate(req.URL.Query().Get("date"), loc)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	summary, err := h.controller.calc.DaySummary(date, l.Latitude, l.Longitude)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, newSunResponse(h.controller.calc, l.Name, summary))
}

// GetSunForCoordinates returns the solar events of one date at lat/lon
func (h *Handlers) GetSunForCoordinates(w http.ResponseWriter, req *http.Request) {
	if !h.checkFormat(w, req) {
		return
	}

	q := req.URL.Query()
	lat, err := parseCoordinate(q.Get("lat"), "lat")
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	lon, err := parseCoordinate(q.Get("lon"), "lon")
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	place := config.LocationData{Name: "coordinates", Latitude: lat, Longitude: lon, Timezone: q.Get("tz")}
	if err := place.Validate(); err != nil {
		h.writeError(w, req, badRequest{err})
		return
	}
	loc, _ := place.Location()

	date, err := parseDate(q.Get("date"), loc)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	summary, err := h.controller.calc.DaySummary(date, lat, lon)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, newSunResponse(h.controller.calc, "", summary))
}

// GetMoonPhases returns the principal moon phases of a year. Without a phase
// parameter all four phases are returned, merged in time order.
func (h *Handlers) GetMoonPhases(w http.ResponseWriter, req *http.Request) {
	if !h.checkFormat(w, req) {
		return
	}

	year, err := strconv.Atoi(mux.Vars(req)["year"])
	if err != nil {
		h.writeError(w, req, badRequestf("invalid year %q", mux.Vars(req)["year"]))
		return
	}

	q := req.URL.Query()
	loc, err := parseZone(q.Get("tz"))
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	phaseParam := q.Get("phase")
	phase := lunar.Phase(-1)
	if phaseParam != "" {
		if phase, err = lunar.ParsePhase(phaseParam); err != nil {
			h.writeError(w, req, badRequest{err})
			return
		}
	}

	phases, err := h.moonPhases(year, loc)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	if phaseParam != "" {
		filtered := phases[:0:0]
		for _, p := range phases {
			if p.Phase == phase {
				filtered = append(filtered, p)
			}
		}
		phases = filtered
	}
	h.write(w, req, newMoonResponse(year, loc, phases))
}

// moonPhases prefers the store, which holds years bounded in UTC
func (h *Handlers) moonPhases(year int, loc *time.Location) ([]lunar.PhaseEvent, error) {
	if store := h.controller.store; store != nil && loc == time.UTC {
		phases, err := store.LoadMoonPhases(year, loc)
		if err == nil && len(phases) > 0 {
			return phases, nil
		}
		if err != nil {
			h.controller.logger.Warnw("moon phase store lookup failed, computing instead", "year", year, "error", err)
		}
	}
	return h.controller.calc.YearAllMoonPhases(year, loc)
}

// GetAlmanac returns a run of days at a configured location with day-length statistics
func (h *Handlers) GetAlmanac(w http.ResponseWriter, req *http.Request) {
	if !h.checkFormat(w, req) {
		return
	}

	name := mux.Vars(req)["location"]
	l, loc, err := h.controller.location(name)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	q := req.URL.Query()
	from, err := parseDate(q.Get("from"), loc)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	to := from.AddDate(0, 0, defaultAlmanacDays-1)
	if q.Get("to") != "" {
		if to, err = parseDate(q.Get("to"), loc); err != nil {
			h.writeError(w, req, err)
			return
		}
	}

	place := almanac.Place{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude, Location: loc}
	a, source, err := h.almanac(place, from, to)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	resp := AlmanacResponse{
		Location: l.Name,
		Timezone: loc.String(),
		Source:   source,
		Days:     a.Rows(),
	}
	if stats, err := a.DayLengthStats(); err == nil {
		resp.Stats = newStatsResponse(stats)
	}
	h.write(w, req, resp)
}

// almanac reads complete ranges from the store and computes anything else
func (h *Handlers) almanac(p almanac.Place, from, to time.Time) (*almanac.Almanac, string, error) {
	dates, err := almanac.Dates(from, to, p.Location)
	if err != nil {
		return nil, "", err
	}

	if store := h.controller.store; store != nil {
		days, err := store.LoadDays(p.Name, p.Location, from, to)
		switch {
		case err != nil:
			h.controller.logger.Warnw("almanac store lookup failed, computing instead", "location", p.Name, "error", err)
		case len(days) == len(dates):
			a, err := almanac.FromSummaries(h.controller.calc, p, days)
			return a, "store", err
		}
	}

	a, err := almanac.Compute(h.controller.calc, p, from, to)
	return a, "computed", err
}

// checkFormat rejects unknown format parameters before any work is done
func (h *Handlers) checkFormat(w http.ResponseWriter, req *http.Request) bool {
	if _, err := responseformat.ParseFormat(req.URL.Query().Get("format")); err != nil {
		h.writeError(w, req, badRequest{err})
		return false
	}
	return true
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	err := h.formatter.WriteResponse(w, req, data, map[string]string{"Cache-Control": "max-age=300"})
	if errors.Is(err, responseformat.ErrCSVUnsupported) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.controller.logger.Errorw("error encoding response", "path", req.URL.Path, "error", err)
	}
}

// writeError maps err onto an HTTP status
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, almanac.ErrEmptyRange),
		errors.Is(err, almanac.ErrRangeTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, config.ErrLocationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, timescale.ErrDeltaTOutOfRange):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed", "path", req.URL.Path, "error", err)
	} else {
		h.controller.logger.Debugw("request rejected", "path", req.URL.Path, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

// parseDate reads YYYY-MM-DD in loc; empty means today in loc
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, badRequestf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func parseCoordinate(s, name string) (float64, error) {
	if s == "" {
		return 0, badRequestf("%s is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, badRequestf("invalid %s %q", name, s)
	}
	return v, nil
}

// parseZone loads an IANA zone; empty means UTC
func parseZone(s string) (*time.Location, error) {
	if s == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, badRequestf("invalid time zone %q", s)
	}
	return loc, nil
}
