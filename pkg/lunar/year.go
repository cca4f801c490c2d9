package lunar

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/timescale"
)

// lunationsPerYear covers every occurrence of a phase in a calendar year
// starting from one lunation before the year begins.
const lunationsPerYear = 15

// Options tune the phase instants
type Options struct {
	RoundToNearestMinute bool
}

// PhaseEvent is one phase instant tagged with its phase
type PhaseEvent struct {
	Time  time.Time
	Phase Phase
}

// YearPhases returns the instants of phase that fall within year in loc,
// in chronological order. A nil loc means UTC.
func YearPhases(year int, phase Phase, loc *time.Location, opts Options) ([]time.Time, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("%d: %w", int(phase), ErrInvalidPhase)
	}
	if loc == nil {
		loc = time.UTC
	}

	begin := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc)

	k := math.Floor(timescale.ApproxLunation(begin)) - 1
	phases := make([]time.Time, 0, 13)

	for i := 0; i < lunationsPerYear; i, k = i+1, k+1 {
		// The JDE is read as if it were a JD, then moved from TT to UT.
		t := timescale.JDToCivil(TruePhase(k, phase)).In(loc)

		deltaT, err := timescale.DeltaT(t)
		if err != nil {
			// Lunations well outside the year are only there as margin
			if errors.Is(err, timescale.ErrDeltaTOutOfRange) && outsideYear(t, begin, end) {
				continue
			}
			return nil, fmt.Errorf("%s in %d: %w", phase, year, err)
		}

		correction := time.Duration(math.Round(math.Abs(deltaT))) * time.Second
		if deltaT > 0 {
			t = t.Add(-correction)
		} else {
			t = t.Add(correction)
		}

		if opts.RoundToNearestMinute {
			t = timescale.RoundToMinute(t)
		}

		if !t.Before(begin) && t.Before(end) {
			phases = append(phases, t)
		}
	}

	return phases, nil
}

// outsideYear reports whether t, before its ΔT correction, is more than a
// day away from [begin, end). ΔT stays well under a day in the supported era.
func outsideYear(t, begin, end time.Time) bool {
	return t.Before(begin.AddDate(0, 0, -1)) || !t.Before(end.AddDate(0, 0, 1))
}

// YearAllPhases returns every principal phase within year in loc, sorted by
// time. A nil loc means UTC.
func YearAllPhases(year int, loc *time.Location, opts Options) ([]PhaseEvent, error) {
	var events []PhaseEvent
	for _, phase := range Phases {
		times, err := YearPhases(year, phase, loc, opts)
		if err != nil {
			return nil, err
		}
		for _, t := range times {
			events = append(events, PhaseEvent{Time: t, Phase: phase})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}
