package timescale

import "time"

// ApproxLunation estimates k, the fractional number of new moons since the
// new moon of 2000-01-06 (Meeus eq. 49.2).
func ApproxLunation(t time.Time) float64 {
	year := float64(t.Year()) + float64(t.Month())/12 + float64(t.Day())/365.25
	return (year - 2000) * 12.3685
}

// LunationToT converts a lunation number k to Julian centuries since J2000.0
func LunationToT(k float64) float64 {
	return k / 1236.85
}
