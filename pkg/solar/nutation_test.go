package solar

import (
	"math"
	"testing"

	"github.com/soniakeys/meeus/v3/nutation"
)

func TestNutationTableChecksum(t *testing.T) {
	if len(nutationTerms) != 63 {
		t.Fatalf("expected 63 nutation terms, got %d", len(nutationTerms))
	}

	var sinSum, cosSum, multipliers, magnitudes float64
	for _, term := range nutationTerms {
		sinSum += term.sinCoeff
		cosSum += term.cosCoeff
		multipliers += math.Abs(term.d) + math.Abs(term.m) + math.Abs(term.mp) + math.Abs(term.f) + math.Abs(term.om)
		magnitudes += math.Abs(term.sinCoeff) + math.Abs(term.sinRate) + math.Abs(term.cosCoeff) + math.Abs(term.cosRate)
	}

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"longitude coefficients", sinSum, -184144},
		{"obliquity coefficients", cosSum, 98301},
		{"argument multipliers", multipliers, 268},
		{"coefficient magnitudes", magnitudes, 295245.4},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.expected) > 1e-6 {
			t.Errorf("%s: sum is %v, expected %v", c.name, c.got, c.expected)
		}
	}
}

func TestNutationMeeusExample(t *testing.T) {
	// Meeus example 22.a, 1987 April 10 at 0h TD
	T := (2446895.5 - 2451545.0) / 36525

	deltaPsi := NutationInLongitude(T) * 3600
	if math.Abs(deltaPsi-(-3.788)) > 0.001 {
		t.Errorf("Δψ = %.4f\", expected -3.788\"", deltaPsi)
	}

	deltaEpsilon := NutationInObliquity(T) * 3600
	if math.Abs(deltaEpsilon-9.443) > 0.001 {
		t.Errorf("Δε = %.4f\", expected 9.443\"", deltaEpsilon)
	}

	expectedTrue := 23 + 26.0/60 + 36.850/3600
	if got := TrueObliquity(T); math.Abs(got-expectedTrue) > 1e-6 {
		t.Errorf("ε = %.7f, expected %.7f", got, expectedTrue)
	}
}

func TestNutationAgainstMeeusPackage(t *testing.T) {
	for _, jde := range []float64{2305447.5, 2436116.31, 2446895.5, 2451545.0, 2457388.5, 2488069.5} {
		T := (jde - 2451545.0) / 36525
		psi, eps := nutation.Nutation(jde)

		if got, want := NutationInLongitude(T), psi.Deg(); math.Abs(got-want) > 1e-6 {
			t.Errorf("JDE %.2f: Δψ = %.8f, meeus gives %.8f", jde, got, want)
		}
		if got, want := NutationInObliquity(T), eps.Deg(); math.Abs(got-want) > 1e-6 {
			t.Errorf("JDE %.2f: Δε = %.8f, meeus gives %.8f", jde, got, want)
		}
		if got, want := MeanObliquity(T), nutation.MeanObliquityLaskar(jde).Deg(); math.Abs(got-want) > 1e-7 {
			t.Errorf("JDE %.2f: ε0 = %.8f, meeus gives %.8f", jde, got, want)
		}
	}
}
