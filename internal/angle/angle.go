// Package angle holds the degree-based helpers shared by the solar and lunar
// models. All angles are in degrees unless a name says otherwise.
package angle

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/unit"
)

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Sin is the sine of an angle in degrees
func Sin(deg float64) float64 { return math.Sin(DegToRad(deg)) }

// Cos is the cosine of an angle in degrees
func Cos(deg float64) float64 { return math.Cos(DegToRad(deg)) }

// Reduce wraps an angle to the range [0, 360)
func Reduce(deg float64) float64 {
	return unit.PMod(deg, 360)
}

// Polynomial evaluates c[0] + c[1]x + c[2]x² + ...
func Polynomial(x float64, c ...float64) float64 {
	if len(c) == 0 {
		return 0
	}
	return base.Horner(x, c...)
}

// Interpolate3 interpolates between three equally spaced tabular values
// (Meeus eq. 3.3). n is the interpolating factor relative to y2, in [-1, 1].
// With wrap set, the differences are taken across the 0/360 boundary, which
// is what a right ascension sequence needs.
func Interpolate3(y1, y2, y3, n float64, wrap bool) float64 {
	a := y2 - y1
	b := y3 - y2
	if wrap {
		if a < 0 {
			a += 360
		}
		if b < 0 {
			b += 360
		}
	}
	c := b - a
	return y2 + (n/2)*(a+b+n*c)
}
