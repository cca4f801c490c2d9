package database

import (
	"fmt"
	"sort"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/solar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

const dayLayout = "2006-01-02"

func sunEventsFromSummary(location string, d sunmoon.DaySummary, now time.Time) []SunEvent {
	day := d.Date.Format(dayLayout)
	events := make([]SunEvent, 0, len(d.Events))
	for _, e := range d.Events {
		kind := e.Kind.String()
		row := SunEvent{
			ID:         sunEventID(location, day, kind),
			Location:   location,
			Day:        day,
			Kind:       kind,
			Latitude:   d.Latitude,
			Longitude:  d.Longitude,
			Timezone:   d.Date.Location().String(),
			NoEvent:    string(e.NoEvent),
			ComputedAt: now,
		}
		if e.HasTime() {
			t := e.Time.UTC()
			row.Time = &t
		}
		events = append(events, row)
	}
	return events
}

// parseDay accepts a bare date or the timestamp form some drivers return for date columns
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if len(s) > len(dayLayout) {
		s = s[:len(dayLayout)]
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

func summariesFromSunEvents(events []SunEvent, loc *time.Location) ([]sunmoon.DaySummary, error) {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]*sunmoon.DaySummary)
	var days []string
	for _, row := range events {
		kind, err := sunmoon.ParseEventKind(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("stored event %s: %w", row.ID, err)
		}

		s, ok := byDay[row.Day]
		if !ok {
			date, err := parseDay(row.Day, loc)
			if err != nil {
				return nil, fmt.Errorf("stored event %s: %w", row.ID, err)
			}
			s = &sunmoon.DaySummary{Date: date, Latitude: row.Latitude, Longitude: row.Longitude}
			byDay[row.Day] = s
			days = append(days, row.Day)
		}

		e := sunmoon.Event{NoEvent: solar.NoEventCode(row.NoEvent)}
		if row.Time != nil {
			e.Time = row.Time.In(loc)
		}
		s.Events = append(s.Events, sunmoon.KindEvent{Kind: kind, Event: e})
	}

	sort.Strings(days)
	out := make([]sunmoon.DaySummary, 0, len(days))
	for _, day := range days {
		s := byDay[day]
		if len(s.Events) != len(sunmoon.EventKinds) {
			continue
		}
		// EventKind values follow the order of the day
		sort.Slice(s.Events, func(i, j int) bool { return s.Events[i].Kind < s.Events[j].Kind })
		out = append(out, *s)
	}
	return out, nil
}

func moonPhasesFromEvents(year int, phases []lunar.PhaseEvent, now time.Time) []MoonPhase {
	rows := make([]MoonPhase, 0, len(phases))
	seen := make(map[lunar.Phase]int)
	for _, ph := range phases {
		rows = append(rows, MoonPhase{
			ID:         moonPhaseID(year, int(ph.Phase), seen[ph.Phase]),
			Year:       year,
			Phase:      int(ph.Phase),
			Time:       ph.Time.UTC(),
			ComputedAt: now,
		})
		seen[ph.Phase]++
	}
	return rows
}

func eventsFromMoonPhases(rows []MoonPhase, loc *time.Location) []lunar.PhaseEvent {
	if loc == nil {
		loc = time.UTC
	}
	events := make([]lunar.PhaseEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, lunar.PhaseEvent{Time: row.Time.In(loc), Phase: lunar.Phase(row.Phase)})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
	return events
}
