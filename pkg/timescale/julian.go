// Package timescale converts between civil time, Julian dates, Julian
// centuries and dynamical time (Meeus ch. 7, 10 and 12).
package timescale

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian date of 2000-01-01T12:00:00 TT
const J2000 = 2451545.0

// DaysPerCentury is the length of a Julian century in days
const DaysPerCentury = 36525.0

// gregorianCutover is the instant the Gregorian calendar took effect.
// Earlier instants have their calendar fields read as Julian calendar fields.
var gregorianCutover = time.Date(1582, time.October, 15, 12, 0, 0, 0, time.UTC)

// CivilToJD converts the UTC wall-clock time of t to a Julian date.
func CivilToJD(t time.Time) float64 {
	t = t.UTC()
	day := float64(t.Day()) +
		(float64(t.Hour())+(float64(t.Minute())+float64(t.Second())/60)/60)/24
	if t.After(gregorianCutover) {
		return julian.CalendarGregorianToJD(t.Year(), int(t.Month()), day)
	}
	return julian.CalendarJulianToJD(t.Year(), int(t.Month()), day)
}

// firstGregorianDay is the integer day number (JD + 0.5) of 1582-10-15, the
// first day decoded with the Gregorian calendar.
const firstGregorianDay = 2299161

// JDToCivil converts a Julian date to a UTC time (Meeus 7.2). Hours, minutes
// and seconds are truncated, not rounded; callers that want rounding add half
// a second to the result of their own arithmetic before truncating.
func JDToCivil(jd float64) time.Time {
	year, month, fracDay := jdToCalendar(jd)
	day := math.Floor(fracDay)

	hours := (fracDay - day) * 24
	hour := math.Floor(hours)
	minutes := (hours - hour) * 60
	minute := math.Floor(minutes)
	second := math.Floor((minutes - minute) * 60)

	return time.Date(year, time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC)
}

func jdToCalendar(jd float64) (year, month int, day float64) {
	z := math.Floor(jd + 0.5)
	f := jd + 0.5 - z

	a := z
	if z >= firstGregorianDay {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	day = b - d - math.Floor(30.6001*e) + f
	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}
	return year, month, day
}

// JDToT returns the number of Julian centuries since J2000.0
func JDToT(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

// CivilToT returns the number of Julian centuries since J2000.0 for the UTC
// wall-clock time of t.
func CivilToT(t time.Time) float64 {
	return JDToT(CivilToJD(t))
}
