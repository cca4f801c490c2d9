// Package solar computes the apparent position of the sun and the times of
// solar transit, sunrise, sunset and twilight, following Meeus,
// "Astronomical Algorithms", 2nd ed. All angles are in degrees and all
// times are expressed as T, Julian centuries since J2000.0.
package solar

import (
	"math"

	"github.com/chrissnell/meeussunmoon/internal/angle"
)

var (
	sunMeanLongitudeCoeffs   = []float64{280.46646, 36000.76983, 0.0003032}
	sunMeanAnomalyCoeffs     = []float64{357.52772, 35999.050340, -0.0001603, -1.0 / 300000}
	moonMeanElongationCoeffs = []float64{297.85036, 445267.111480, -0.0019142, 1.0 / 189474}
	moonMeanAnomalyCoeffs    = []float64{134.96298, 477198.867398, 0.0086972, 1.0 / 56250}
	moonArgLatitudeCoeffs    = []float64{93.27191, 483202.017538, -0.0036825, 1.0 / 327270}
	moonAscendingNodeCoeffs  = []float64{125.04452, -1934.136261, 0.0020708, 1.0 / 450000}

	// Laskar's expression, arc-seconds in units of 10 000 Julian years
	meanObliquityCoeffs = []float64{
		84381.448, -4680.93, -1.55, 1999.25, -51.38, -249.67,
		-39.05, 7.12, 27.87, 5.79, 2.45,
	}
)

// SunMeanLongitude is L0, referred to the mean equinox of the date (eq. 25.2)
func SunMeanLongitude(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, sunMeanLongitudeCoeffs...))
}

// SunMeanAnomaly is M (ch. 22)
func SunMeanAnomaly(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, sunMeanAnomalyCoeffs...))
}

// MoonMeanElongation is D, the mean elongation of the moon from the sun
func MoonMeanElongation(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, moonMeanElongationCoeffs...))
}

// MoonMeanAnomaly is M′
func MoonMeanAnomaly(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, moonMeanAnomalyCoeffs...))
}

// MoonArgumentOfLatitude is F
func MoonArgumentOfLatitude(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, moonArgLatitudeCoeffs...))
}

// MoonAscendingNodeLongitude is Ω, the longitude of the ascending node of the
// moon's mean orbit, measured from the mean equinox of the date.
func MoonAscendingNodeLongitude(T float64) float64 {
	return angle.Reduce(angle.Polynomial(T, moonAscendingNodeCoeffs...))
}

// SunEquationOfCenter is C
func SunEquationOfCenter(T float64) float64 {
	M := SunMeanAnomaly(T)
	return (1.914602-0.004817*T-0.000014*T*T)*angle.Sin(M) +
		(0.019993-0.000101*T)*angle.Sin(2*M) +
		0.000290*angle.Sin(3*M)
}

// SunTrueLongitude is ☉ = L0 + C
func SunTrueLongitude(T float64) float64 {
	return SunMeanLongitude(T) + SunEquationOfCenter(T)
}

// SunApparentLongitude is λ, the true longitude corrected for nutation and
// aberration.
func SunApparentLongitude(T float64) float64 {
	return SunTrueLongitude(T) - 0.00569 - 0.00478*angle.Sin(MoonAscendingNodeLongitude(T))
}

// MeanObliquity is ε0 (eq. 22.3)
func MeanObliquity(T float64) float64 {
	return angle.Polynomial(T/100, meanObliquityCoeffs...) / 3600
}

// TrueObliquity is ε = ε0 + Δε
func TrueObliquity(T float64) float64 {
	return MeanObliquity(T) + NutationInObliquity(T)
}

// apparentObliquity is the obliquity to use with the apparent longitude
// (eq. 25.8).
func apparentObliquity(T float64) float64 {
	return TrueObliquity(T) + 0.00256*angle.Cos(MoonAscendingNodeLongitude(T))
}

// ApparentRightAscension is α of the sun, in [0, 360)
func ApparentRightAscension(T float64) float64 {
	epsilon := apparentObliquity(T)
	lambda := SunApparentLongitude(T)
	alpha := angle.RadToDeg(math.Atan2(angle.Cos(epsilon)*angle.Sin(lambda), angle.Cos(lambda)))
	return angle.Reduce(alpha)
}

// ApparentDeclination is δ of the sun
func ApparentDeclination(T float64) float64 {
	epsilon := apparentObliquity(T)
	lambda := SunApparentLongitude(T)
	return angle.RadToDeg(math.Asin(angle.Sin(epsilon) * angle.Sin(lambda)))
}

// MeanSiderealTime is θ0 at Greenwich (eq. 12.4). The result is not reduced.
func MeanSiderealTime(T float64) float64 {
	days := T * 36525
	return 280.46061837 + 360.98564736629*days + 0.000387933*T*T - T*T*T/38710000
}

// ApparentSiderealTime is θ0 + Δψ·cos ε, reduced to [0, 360)
func ApparentSiderealTime(T float64) float64 {
	theta := MeanSiderealTime(T) + NutationInLongitude(T)*angle.Cos(TrueObliquity(T))
	return angle.Reduce(theta)
}
