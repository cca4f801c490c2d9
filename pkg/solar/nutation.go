package solar

import "github.com/chrissnell/meeussunmoon/internal/angle"

// nutationTerm is one row of Meeus table 22.A. The argument is
// D·d + M·m + M′·mp + F·f + Ω·om; the longitude term is
// (sinCoeff + sinRate·T)·sin(arg) and the obliquity term
// (cosCoeff + cosRate·T)·cos(arg), both in units of 0.0001".
type nutationTerm struct {
	d, m, mp, f, om   float64
	sinCoeff, sinRate float64
	cosCoeff, cosRate float64
}

var nutationTerms = [63]nutationTerm{
	{0, 0, 0, 0, 1, -171996, -174.2, 92025, 8.9},
	{-2, 0, 0, 2, 2, -13187, -1.6, 5736, -3.1},
	{0, 0, 0, 2, 2, -2274, -0.2, 977, -0.5},
	{0, 0, 0, 0, 2, 2062, 0.2, -895, 0.5},
	{0, 1, 0, 0, 0, 1426, -3.4, 54, -0.1},
	{0, 0, 1, 0, 0, 712, 0.1, -7, 0},
	{-2, 1, 0, 2, 2, -517, 1.2, 224, -0.6},
	{0, 0, 0, 2, 1, -386, -0.4, 200, 0},
	{0, 0, 1, 2, 2, -301, 0, 129, -0.1},
	{-2, -1, 0, 2, 2, 217, -0.5, -95, 0.3},
	{-2, 0, 1, 0, 0, -158, 0, 0, 0},
	{-2, 0, 0, 2, 1, 129, 0.1, -70, 0},
	{0, 0, -1, 2, 2, 123, 0, -53, 0},
	{2, 0, 0, 0, 0, 63, 0, 0, 0},
	{0, 0, 1, 0, 1, 63, 0.1, -33, 0},
	{2, 0, -1, 2, 2, -59, 0, 26, 0},
	{0, 0, -1, 0, 1, -58, -0.1, 32, 0},
	{0, 0, 1, 2, 1, -51, 0, 27, 0},
	{-2, 0, 2, 0, 0, 48, 0, 0, 0},
	{0, 0, -2, 2, 1, 46, 0, -24, 0},
	{2, 0, 0, 2, 2, -38, 0, 16, 0},
	{0, 0, 2, 2, 2, -31, 0, 13, 0},
	{0, 0, 2, 0, 0, 29, 0, 0, 0},
	{-2, 0, 1, 2, 2, 29, 0, -12, 0},
	{0, 0, 0, 2, 0, 26, 0, 0, 0},
	{-2, 0, 0, 2, 0, -22, 0, 0, 0},
	{0, 0, -1, 2, 1, 21, 0, -10, 0},
	{0, 2, 0, 0, 0, 17, -0.1, 0, 0},
	{2, 0, -1, 0, 1, 16, 0, -8, 0},
	{-2, 2, 0, 2, 2, -16, 0.1, 7, 0},
	{0, 1, 0, 0, 1, -15, 0, 9, 0},
	{-2, 0, 1, 0, 1, -13, 0, 7, 0},
	{0, -1, 0, 0, 1, -12, 0, 6, 0},
	{0, 0, 2, -2, 0, 11, 0, 0, 0},
	{2, 0, -1, 2, 1, -10, 0, 5, 0},
	{2, 0, 1, 2, 2, -8, 0, 3, 0},
	{0, 1, 0, 2, 2, 7, 0, -3, 0},
	{-2, 1, 1, 0, 0, -7, 0, 0, 0},
	{0, -1, 0, 2, 2, -7, 0, 3, 0},
	{2, 0, 0, 2, 1, -7, 0, 3, 0},
	{2, 0, 1, 0, 0, 6, 0, 0, 0},
	{-2, 0, 2, 2, 2, 6, 0, -3, 0},
	{-2, 0, 1, 2, 1, 6, 0, -3, 0},
	{2, 0, -2, 0, 1, -6, 0, 3, 0},
	{2, 0, 0, 0, 1, -6, 0, 3, 0},
	{0, -1, 1, 0, 0, 5, 0, 0, 0},
	{-2, -1, 0, 2, 1, -5, 0, 3, 0},
	{-2, 0, 0, 0, 1, -5, 0, 3, 0},
	{0, 0, 2, 2, 1, -5, 0, 3, 0},
	{-2, 0, 2, 0, 1, 4, 0, 0, 0},
	{-2, 1, 0, 2, 1, 4, 0, 0, 0},
	{0, 0, 1, -2, 0, 4, 0, 0, 0},
	{-1, 0, 1, 0, 0, -4, 0, 0, 0},
	{-2, 1, 0, 0, 0, -4, 0, 0, 0},
	{1, 0, 0, 0, 0, -4, 0, 0, 0},
	{0, 0, 1, 2, 0, 3, 0, 0, 0},
	{0, 0, -2, 2, 2, -3, 0, 0, 0},
	{-1, -1, 1, 0, 0, -3, 0, 0, 0},
	{0, 1, 1, 0, 0, -3, 0, 0, 0},
	{0, -1, 1, 2, 2, -3, 0, 0, 0},
	{2, -1, -1, 2, 2, -3, 0, 0, 0},
	{0, 0, 3, 2, 2, 3, 0, 0, 0},
	{2, -1, 0, 2, 2, -3, 0, 0, 0},
}

// arcsec·10⁻⁴ → degrees
const nutationScale = 36000000.0

type fundamentalArguments struct {
	d, m, mp, f, om float64
}

func newFundamentalArguments(T float64) fundamentalArguments {
	return fundamentalArguments{
		d:  MoonMeanElongation(T),
		m:  SunMeanAnomaly(T),
		mp: MoonMeanAnomaly(T),
		f:  MoonArgumentOfLatitude(T),
		om: MoonAscendingNodeLongitude(T),
	}
}

func (a fundamentalArguments) of(term nutationTerm) float64 {
	return term.d*a.d + term.m*a.m + term.mp*a.mp + term.f*a.f + term.om*a.om
}

// NutationInLongitude returns Δψ in degrees (Meeus ch. 22)
func NutationInLongitude(T float64) float64 {
	args := newFundamentalArguments(T)
	var deltaPsi float64
	for _, term := range nutationTerms {
		deltaPsi += (term.sinCoeff + term.sinRate*T) * angle.Sin(args.of(term))
	}
	return deltaPsi / nutationScale
}

// NutationInObliquity returns Δε in degrees (Meeus ch. 22)
func NutationInObliquity(T float64) float64 {
	args := newFundamentalArguments(T)
	var deltaEpsilon float64
	for _, term := range nutationTerms {
		deltaEpsilon += (term.cosCoeff + term.cosRate*T) * angle.Cos(args.of(term))
	}
	return deltaEpsilon / nutationScale
}
