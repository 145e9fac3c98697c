// Package testutil provides shared assertion helpers for the statistical
// tests of sim/ and its sub-packages.
package testutil

import (
	"math"
	"sort"
	"testing"
)

// KSDistance returns the Kolmogorov-Smirnov distance between the empirical
// distribution of samples and cdf. samples is not modified.
func KSDistance(samples []float64, cdf func(float64) float64) float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		d = math.Max(d, math.Max(math.Abs(float64(i+1)/n-f), math.Abs(f-float64(i)/n)))
	}
	return d
}

// AssertKS fails the test when the KS distance of samples to cdf exceeds maxD.
func AssertKS(t *testing.T, name string, samples []float64, cdf func(float64) float64, maxD float64) {
	t.Helper()
	if d := KSDistance(samples, cdf); d > maxD {
		t.Errorf("%s: KS distance %g exceeds %g over %d samples", name, d, maxD, len(samples))
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
