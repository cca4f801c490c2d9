package timescale

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/meeussunmoon/internal/angle"
)

// ErrDeltaTOutOfRange is returned for dates outside the years -1999 to 3000,
// where the ΔT polynomials are not defined.
var ErrDeltaTOutOfRange = errors.New("ΔT can only be calculated between 1999 BCE and 3000 CE")

const (
	minDeltaTYear = -1999
	maxDeltaTYear = 3000
)

// DeltaT returns ΔT = TT − UT in seconds for the calendar month of t, using
// the polynomial expressions of Espenak and Meeus (NASA Five Millennium Canon).
// The year is moved to the middle of the month before a segment is chosen.
func DeltaT(t time.Time) (float64, error) {
	if t.Year() < minDeltaTYear || t.Year() > maxDeltaTYear {
		return 0, fmt.Errorf("year %d: %w", t.Year(), ErrDeltaTOutOfRange)
	}

	y := float64(t.Year()) + (float64(t.Month())-0.5)/12
	return deltaTForYear(y), nil
}

func deltaTForYear(y float64) float64 {
	switch {
	case y < -500:
		return longTermParabola(y)
	case y < 500:
		return angle.Polynomial(y/100,
			10583.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	case y < 1600:
		return angle.Polynomial((y-1000)/100,
			1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	case y < 1700:
		return angle.Polynomial(y-1600, 120, -0.9808, -0.01532, 1.0/7129)
	case y < 1800:
		return angle.Polynomial(y-1700, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000)
	case y < 1860:
		return angle.Polynomial(y-1800,
			13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case y < 1900:
		return angle.Polynomial(y-1860, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174)
	case y < 1920:
		return angle.Polynomial(y-1900, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1941:
		return angle.Polynomial(y-1920, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1961:
		return angle.Polynomial(y-1950, 29.07, 0.407, -1.0/233, 1.0/2547)
	case y < 1986:
		return angle.Polynomial(y-1975, 45.45, 1.067, -1.0/260, -1.0/718)
	case y < 2005:
		return angle.Polynomial(y-2000, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case y < 2050:
		return angle.Polynomial(y-2000, 62.92, 0.32217, 0.005589)
	case y < 2150:
		return longTermParabola(y) - 0.5628*(2150-y)
	default:
		return longTermParabola(y)
	}
}

// longTermParabola is the Morrison and Stephenson fit used outside the
// historical record.
func longTermParabola(y float64) float64 {
	u := (y - 1820) / 100
	return -20 + 32*u*u
}

// TDOffsetCenturies expresses a ΔT in seconds as Julian centuries
func TDOffsetCenturies(deltaT float64) float64 {
	return deltaT / (86400 * DaysPerCentury)
}
