package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/meeussunmoon/internal/angle"
	"github.com/chrissnell/meeussunmoon/pkg/timescale"
)

// StandardDepression is the altitude below the horizon, in degrees, of the
// sun's centre at sunrise and sunset: refraction plus the solar semidiameter.
const StandardDepression = 50.0 / 60.0

// Twilight depressions in degrees
const (
	CivilDepression        = 6.0
	NauticalDepression     = 12.0
	AstronomicalDepression = 18.0
)

// maxCorrections bounds the rise/set refinement loop
const maxCorrections = 3

// convergence is the correction, as a fraction of a day (about 9 s), below
// which the rise/set refinement stops.
const convergence = 0.0001

const siderealRate = 360.985647

// Direction selects the rising or setting crossing of a depression
type Direction int

const (
	Rise Direction = iota
	Set
)

func (d Direction) String() string {
	if d == Rise {
		return "rise"
	}
	return "set"
}

// NoEventCode explains why an event does not happen on a date
type NoEventCode string

const (
	// SunHigh means the sun stays above the depression all day
	SunHigh NoEventCode = "SUN_HIGH"
	// SunLow means the sun stays below the depression all day
	SunLow NoEventCode = "SUN_LOW"
)

// Result is either an event time or a no-event code, never both.
type Result struct {
	Time    time.Time
	NoEvent NoEventCode
}

// OK reports whether the result carries an event time
func (r Result) OK() bool {
	return r.NoEvent == ""
}

// Options tune the solver output
type Options struct {
	RoundToNearestMinute bool
}

// dayBasis holds the quantities computed once per civil date at 0h UT.
type dayBasis struct {
	midnight      time.Time
	deltaT        float64
	T             float64
	theta0        float64
	offsetMinutes float64
}

// newDayBasis takes the calendar date of date in its own location and
// evaluates everything at 00:00 UTC of that date.
func newDayBasis(date time.Time) (dayBasis, error) {
	y, mo, d := date.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)

	deltaT, err := timescale.DeltaT(midnight)
	if err != nil {
		return dayBasis{}, err
	}

	T := timescale.CivilToT(midnight)
	_, offset := date.Zone()

	return dayBasis{
		midnight:      midnight,
		deltaT:        deltaT,
		T:             T,
		theta0:        ApparentSiderealTime(T),
		offsetMinutes: float64(offset) / 60,
	}, nil
}

// dynamicalT is T at 0h TD rather than 0h UT
func (b dayBasis) dynamicalT() float64 {
	return b.T - timescale.TDOffsetCenturies(b.deltaT)
}

// eventTime turns a fraction of the day into an instant in loc. Negative
// fractions fall on the previous UTC day.
func (b dayBasis) eventTime(m float64, loc *time.Location, opts Options) time.Time {
	seconds := math.Floor(m*86400 + 0.5)
	t := b.midnight.Add(time.Duration(seconds) * time.Second)
	if opts.RoundToNearestMinute {
		t = timescale.RoundToMinute(t)
	}
	return t.In(loc)
}

// Transit returns the time of the sun's upper culmination on the civil date
// of date, at longitude lon (degrees, east positive). The result is in the
// location of date.
func Transit(date time.Time, lon float64, opts Options) (time.Time, error) {
	b, err := newDayBasis(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("solar transit: %w", err)
	}

	alpha := ApparentRightAscension(b.dynamicalT())
	m := normalizeM((alpha-lon-b.theta0)/360, b.offsetMinutes)
	m += transitCorrection(b, lon, m)

	return b.eventTime(m, date.Location(), opts), nil
}

// RiseSet returns the time at which the sun's centre crosses depression
// degrees below the horizon in direction dir, on the civil date of date at
// latitude lat and longitude lon (east positive). When no crossing happens
// that day the result carries SunHigh or SunLow instead of a time.
func RiseSet(date time.Time, lat, lon float64, dir Direction, depression float64, opts Options) (Result, error) {
	b, err := newDayBasis(date)
	if err != nil {
		return Result{}, fmt.Errorf("solar %s: %w", dir, err)
	}

	TD := b.dynamicalT()
	alpha := ApparentRightAscension(TD)
	delta := ApparentDeclination(TD)

	H0, code := approxHourAngle(lat, delta, depression)
	if code != "" {
		return Result{NoEvent: code}, nil
	}

	m := normalizeM((alpha-lon-b.theta0)/360, b.offsetMinutes)
	if dir == Rise {
		m -= H0 / 360
	} else {
		m += H0 / 360
	}

	for i := 0; i < maxCorrections; i++ {
		dm := riseSetCorrection(b, lat, lon, m, depression)
		if math.IsNaN(dm) || math.IsInf(dm, 0) {
			break
		}
		m += dm
		if math.Abs(dm) <= convergence {
			break
		}
	}

	return Result{Time: b.eventTime(m, date.Location(), opts)}, nil
}

// approxHourAngle solves eq. 15.1 for H0. A cosine outside [-1, 1] means the
// sun never reaches the depression that day.
func approxHourAngle(lat, delta, depression float64) (float64, NoEventCode) {
	cosH0 := (angle.Sin(-depression) - angle.Sin(lat)*angle.Sin(delta)) /
		(angle.Cos(lat) * angle.Cos(delta))
	switch {
	case cosH0 < -1:
		return 0, SunHigh
	case cosH0 > 1:
		return 0, SunLow
	}
	return angle.RadToDeg(math.Acos(cosH0)), ""
}

// normalizeM moves a day fraction by a whole day when the implied local time
// falls outside the civil date.
func normalizeM(m, offsetMinutes float64) float64 {
	local := m + offsetMinutes/1440
	switch {
	case local < 0:
		return m + 1
	case local > 1:
		return m - 1
	}
	return m
}

func transitCorrection(b dayBasis, lon, m float64) float64 {
	theta := b.theta0 + siderealRate*m
	n := m + b.deltaT/86400
	alpha := interpolatedRightAscension(b.T, n)
	return -localHourAngle(theta, lon, alpha) / 360
}

func riseSetCorrection(b dayBasis, lat, lon, m, depression float64) float64 {
	theta := b.theta0 + siderealRate*m
	n := m + b.deltaT/86400
	alpha := interpolatedRightAscension(b.T, n)
	delta := interpolatedDeclination(b.T, n)
	H := localHourAngle(theta, lon, alpha)
	h := altitude(lat, delta, H)
	return (h + depression) / (360 * angle.Cos(delta) * angle.Cos(lat) * angle.Sin(H))
}

// localHourAngle is H in (-180, 180]
func localHourAngle(theta, lon, alpha float64) float64 {
	H := angle.Reduce(theta + lon - alpha)
	if H > 180 {
		H -= 360
	}
	return H
}

// altitude of the sun above the horizon (eq. 13.6)
func altitude(lat, delta, H float64) float64 {
	return angle.RadToDeg(math.Asin(
		angle.Sin(lat)*angle.Sin(delta) + angle.Cos(lat)*angle.Cos(delta)*angle.Cos(H)))
}

const oneDay = 1 / timescale.DaysPerCentury

func interpolatedRightAscension(T, n float64) float64 {
	a1 := ApparentRightAscension(T - oneDay)
	a2 := ApparentRightAscension(T)
	a3 := ApparentRightAscension(T + oneDay)
	return angle.Reduce(angle.Interpolate3(a1, a2, a3, n, true))
}

func interpolatedDeclination(T, n float64) float64 {
	d1 := ApparentDeclination(T - oneDay)
	d2 := ApparentDeclination(T)
	d3 := ApparentDeclination(T + oneDay)
	return angle.Interpolate3(d1, d2, d3, n, false)
}
