// Package lunar computes the instants of the principal phases of the moon
// (Meeus, "Astronomical Algorithms", ch. 49).
package lunar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SynodicMonth is the mean length of the lunar cycle in days
const SynodicMonth = 29.530588861

// ErrInvalidPhase is returned for a phase index outside 0 to 3
var ErrInvalidPhase = errors.New("moon phase must be 0 (new), 1 (first quarter), 2 (full) or 3 (last quarter)")

// Phase identifies one of the four principal phases
type Phase int

const (
	New Phase = iota
	FirstQuarter
	Full
	LastQuarter
)

// Phases lists the principal phases in the order they occur within a lunation
var Phases = []Phase{New, FirstQuarter, Full, LastQuarter}

var phaseNames = [...]string{"New Moon", "First Quarter", "Full Moon", "Last Quarter"}

// Valid reports whether p is one of the four principal phases
func (p Phase) Valid() bool {
	return p >= New && p <= LastQuarter
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase accepts a phase index ("0" to "3") or a name such as "full",
// "Full Moon", "first-quarter" or "last_quarter". Matching ignores case.
func ParsePhase(s string) (Phase, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		p := Phase(n)
		if !p.Valid() {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidPhase)
		}
		return p, nil
	}

	key := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(s))
	switch key {
	case "new", "new moon":
		return New, nil
	case "first quarter", "first":
		return FirstQuarter, nil
	case "full", "full moon":
		return Full, nil
	case "last quarter", "last", "third quarter":
		return LastQuarter, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidPhase)
}
