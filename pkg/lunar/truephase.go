package lunar

import (
	"github.com/chrissnell/meeussunmoon/internal/angle"
	"github.com/chrissnell/meeussunmoon/pkg/timescale"
)

// periodicTerm is coeff·Eᵉ·sin(m·M + mp·M′ + f·F + om·Ω), or cos for the
// quarter-phase W correction.
type periodicTerm struct {
	coeff        float64
	e            int
	m, mp, f, om float64
}

// Corrections shared by new and full moon (Meeus p. 351)
var newFullTerms = [18]periodicTerm{
	{-0.00111, 0, 0, 1, -2, 0},
	{-0.00057, 0, 0, 1, 2, 0},
	{0.00056, 1, 1, 2, 0, 0},
	{-0.00042, 0, 0, 3, 0, 0},
	{0.00042, 1, 1, 0, 2, 0},
	{0.00038, 1, 1, 0, -2, 0},
	{-0.00024, 1, -1, 2, 0, 0},
	{-0.00017, 0, 0, 0, 0, 1},
	{-0.00007, 0, 2, 1, 0, 0},
	{0.00004, 0, 0, 2, -2, 0},
	{0.00004, 0, 3, 0, 0, 0},
	{0.00003, 0, 1, 1, -2, 0},
	{0.00003, 0, 0, 2, 2, 0},
	{-0.00003, 0, 1, 1, 2, 0},
	{0.00003, 0, -1, 1, 2, 0},
	{-0.00002, 0, -1, 1, -2, 0},
	{-0.00002, 0, 1, 3, 0, 0},
	{0.00002, 0, 0, 4, 0, 0},
}

var newMoonTerms = [7]periodicTerm{
	{-0.40720, 0, 0, 1, 0, 0},
	{0.17241, 1, 1, 0, 0, 0},
	{0.01608, 0, 0, 2, 0, 0},
	{0.01039, 0, 0, 0, 2, 0},
	{0.00739, 1, -1, 1, 0, 0},
	{-0.00514, 1, 1, 1, 0, 0},
	{0.00208, 2, 2, 0, 0, 0},
}

var fullMoonTerms = [7]periodicTerm{
	{-0.40614, 0, 0, 1, 0, 0},
	{0.17302, 1, 1, 0, 0, 0},
	{0.01614, 0, 0, 2, 0, 0},
	{0.01043, 0, 0, 0, 2, 0},
	{0.00734, 1, -1, 1, 0, 0},
	{-0.00515, 1, 1, 1, 0, 0},
	{0.00209, 2, 2, 0, 0, 0},
}

// First and last quarter corrections (Meeus p. 352)
var quarterTerms = [25]periodicTerm{
	{-0.62801, 0, 0, 1, 0, 0},
	{0.17172, 1, 1, 0, 0, 0},
	{-0.01183, 1, 1, 1, 0, 0},
	{0.00862, 0, 0, 2, 0, 0},
	{0.00804, 0, 0, 0, 2, 0},
	{0.00454, 1, -1, 1, 0, 0},
	{0.00204, 2, 2, 0, 0, 0},
	{-0.00180, 0, 0, 1, -2, 0},
	{-0.00070, 0, 0, 1, 2, 0},
	{-0.00040, 0, 0, 3, 0, 0},
	{-0.00034, 1, -1, 2, 0, 0},
	{0.00032, 1, 1, 0, 2, 0},
	{0.00032, 1, 1, 0, -2, 0},
	{-0.00028, 2, 2, 1, 0, 0},
	{0.00027, 1, 1, 2, 0, 0},
	{-0.00017, 0, 0, 0, 0, 1},
	{-0.00005, 0, -1, 1, -2, 0},
	{0.00004, 0, 0, 2, 2, 0},
	{-0.00004, 0, 1, 1, 2, 0},
	{0.00004, 0, -2, 1, 0, 0},
	{0.00003, 0, 1, 1, -2, 0},
	{0.00003, 0, 3, 0, 0, 0},
	{0.00002, 0, 0, 2, -2, 0},
	{0.00002, 0, -1, 1, 2, 0},
	{-0.00002, 0, 1, 3, 0, 0},
}

// W, added for first quarter and subtracted for last quarter. Cosine terms.
var quarterWTerms = [6]periodicTerm{
	{0.00306, 0, 0, 0, 0, 0},
	{-0.00038, 1, 1, 0, 0, 0},
	{0.00026, 0, 0, 1, 0, 0},
	{-0.00002, 0, -1, 1, 0, 0},
	{0.00002, 0, 1, 1, 0, 0},
	{0.00002, 0, 0, 0, 2, 0},
}

// planetaryTerm is coeff·sin(a0 + rate·k), the additional corrections for
// all phases. Only A1 has a T² term.
type planetaryTerm struct {
	coeff, a0, rate float64
}

var planetaryTerms = [14]planetaryTerm{
	{0.000325, 299.77, 0.107408},
	{0.000165, 251.88, 0.016321},
	{0.000164, 251.83, 26.651886},
	{0.000126, 349.42, 36.412478},
	{0.000110, 84.66, 18.206239},
	{0.000062, 141.74, 53.303771},
	{0.000060, 207.14, 2.453732},
	{0.000056, 154.84, 7.306860},
	{0.000047, 34.52, 27.261239},
	{0.000042, 207.19, 0.121824},
	{0.000040, 291.34, 1.844379},
	{0.000037, 161.72, 24.198154},
	{0.000035, 239.56, 25.513099},
	{0.000023, 331.55, 3.592518},
}

const a1TSquared = -0.009173

// arguments for one lunation, in degrees, with E the eccentricity factor
type arguments struct {
	e, m, mp, f, om float64
}

func (a arguments) argument(t periodicTerm) float64 {
	return t.m*a.m + t.mp*a.mp + t.f*a.f + t.om*a.om
}

func (a arguments) factor(t periodicTerm) float64 {
	v := t.coeff
	for i := 0; i < t.e; i++ {
		v *= a.e
	}
	return v
}

func (a arguments) sinSeries(terms []periodicTerm) float64 {
	var sum float64
	for _, t := range terms {
		sum += a.factor(t) * angle.Sin(a.argument(t))
	}
	return sum
}

func (a arguments) cosSeries(terms []periodicTerm) float64 {
	var sum float64
	for _, t := range terms {
		sum += a.factor(t) * angle.Cos(a.argument(t))
	}
	return sum
}

// TruePhase returns the JDE of the given phase in lunation k, where k = 0 is
// the new moon of 2000-01-06. k is taken as an integer lunation count; the
// phase adds its quarter.
func TruePhase(k float64, phase Phase) float64 {
	k += float64(phase) / 4
	T := timescale.LunationToT(k)

	jde := meanPhase(k, T)
	args := arguments{
		e:  angle.Polynomial(T, 1, -0.002516, -0.0000074),
		m:  2.5534 + 29.10535670*k + angle.Polynomial(T, 0, 0, -0.0000014, -0.00000011),
		mp: 201.5643 + 385.81693528*k + angle.Polynomial(T, 0, 0, 0.0107582, 0.00001238, -0.000000058),
		f:  160.7108 + 390.67050284*k + angle.Polynomial(T, 0, 0, -0.0016118, -0.00000227, 0.000000011),
		om: 124.7746 - 1.56375588*k + angle.Polynomial(T, 0, 0, 0.0020672, 0.00000215),
	}

	var correction float64
	switch phase {
	case New:
		correction = args.sinSeries(newFullTerms[:]) + args.sinSeries(newMoonTerms[:])
	case Full:
		correction = args.sinSeries(newFullTerms[:]) + args.sinSeries(fullMoonTerms[:])
	case FirstQuarter:
		correction = args.sinSeries(quarterTerms[:]) + args.cosSeries(quarterWTerms[:])
	case LastQuarter:
		correction = args.sinSeries(quarterTerms[:]) - args.cosSeries(quarterWTerms[:])
	}

	return jde + correction + planetaryCorrection(k, T)
}

// meanPhase is eq. 49.1
func meanPhase(k, T float64) float64 {
	return 2451550.09766 + SynodicMonth*k + angle.Polynomial(T, 0, 0, 0.00015437, -0.000000150, 0.00000000073)
}

func planetaryCorrection(k, T float64) float64 {
	var sum float64
	for i, p := range planetaryTerms {
		a := p.a0 + p.rate*k
		if i == 0 {
			a += a1TSquared * T * T
		}
		sum += p.coeff * angle.Sin(a)
	}
	return sum
}
