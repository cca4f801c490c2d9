package timescale

import "time"

// RoundToMinute rounds t to the nearest minute of its own wall clock,
// with half a minute rounding up.
func RoundToMinute(t time.Time) time.Time {
	t = t.Add(30 * time.Second)
	return t.Add(-time.Duration(t.Second())*time.Second - time.Duration(t.Nanosecond()))
}
