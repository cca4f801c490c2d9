package almanac

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DayLengthStats summarises the time between sunrise and sunset over an almanac
type DayLengthStats struct {
	Days     int           `json:"days"`
	Mean     time.Duration `json:"mean"`
	StdDev   time.Duration `json:"std_dev"`
	Min      time.Duration `json:"min"`
	Max      time.Duration `json:"max"`
	Shortest time.Time     `json:"shortest"`
	Longest  time.Time     `json:"longest"`
	// Change is the day length on the last day minus the first
	Change time.Duration `json:"change"`
}

// DayLengthStats computes day-length statistics. Polar days count as 24h and
// polar nights as zero.
func (a *Almanac) DayLengthStats() (DayLengthStats, error) {
	if len(a.Days) == 0 {
		return DayLengthStats{}, errors.New("no days in almanac")
	}

	seconds := make([]float64, len(a.Days))
	for i, d := range a.Days {
		seconds[i] = d.DayLength().Seconds()
	}

	mean, std := stat.MeanStdDev(seconds, nil)
	if len(seconds) == 1 {
		std = 0
	}
	minIdx := floats.MinIdx(seconds)
	maxIdx := floats.MaxIdx(seconds)

	return DayLengthStats{
		Days:     len(seconds),
		Mean:     toDuration(mean),
		StdDev:   toDuration(std),
		Min:      toDuration(seconds[minIdx]),
		Max:      toDuration(seconds[maxIdx]),
		Shortest: a.Days[minIdx].Date,
		Longest:  a.Days[maxIdx].Date,
		Change:   toDuration(seconds[len(seconds)-1] - seconds[0]),
	}, nil
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second)
}
