package spectrum

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/scint-sim/scint-sim/sim"
)

// CumulativeDistribution is the running trapezoid integral of a spectrum table.
// cumulative[0] is 0, values never decrease and the last value is Total() > 0.
type CumulativeDistribution struct {
	energies   []float64
	cumulative []float64
}

// BuildCumulative integrates table with the trapezoid rule:
//
//	c[i] = c[i-1] + 0.5 * (E[i]-E[i-1]) * (w[i]+w[i-1])
//
// It fails with sim.ErrInvalidSpectrum for fewer than 2 points, non-finite
// values, non-increasing energies, negative weights or a total that is not
// positive. The table is only read during the call.
func BuildCumulative(table sim.SpectrumTable) (*CumulativeDistribution, error) {
	if len(table) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", sim.ErrInvalidSpectrum, len(table))
	}
	energies := make([]float64, len(table))
	cumulative := make([]float64, len(table))
	flat := 0
	for i, p := range table {
		if math.IsNaN(p.Energy) || math.IsInf(p.Energy, 0) || math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
			return nil, fmt.Errorf("%w: point %d (%g, %g) is not finite", sim.ErrInvalidSpectrum, i, p.Energy, p.Weight)
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("%w: point %d has negative weight %g", sim.ErrInvalidSpectrum, i, p.Weight)
		}
		energies[i] = p.Energy
		if i == 0 {
			continue
		}
		prev := table[i-1]
		if p.Energy <= prev.Energy {
			return nil, fmt.Errorf("%w: energy not strictly increasing at point %d (%g after %g)",
				sim.ErrInvalidSpectrum, i, p.Energy, prev.Energy)
		}
		area := 0.5 * (p.Energy - prev.Energy) * (p.Weight + prev.Weight)
		if area == 0 {
			flat++
		}
		cumulative[i] = cumulative[i-1] + area
	}
	total := cumulative[len(cumulative)-1]
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: integrated weight %g must be positive and finite", sim.ErrInvalidSpectrum, total)
	}
	if flat > (len(table)-1)/2 {
		logrus.Warnf("spectrum: %d of %d segments carry zero weight; consider trimming the table", flat, len(table)-1)
	}
	return &CumulativeDistribution{energies: energies, cumulative: cumulative}, nil
}

// Sample maps a draw u, already scaled to [0, Total()], to an energy.
// It finds the smallest index i with cumulative[i] >= u and interpolates
// energy linearly between points i-1 and i. Draws at or below 0 return the
// first energy, draws above Total() the last one, and a flat segment returns
// its lower energy. Results always lie within [MinEnergy(), MaxEnergy()].
func (c *CumulativeDistribution) Sample(u float64) float64 {
	i := sort.SearchFloat64s(c.cumulative, u)
	if i == 0 {
		return c.energies[0]
	}
	if i >= len(c.cumulative) {
		return c.energies[len(c.energies)-1]
	}
	lo, hi := c.cumulative[i-1], c.cumulative[i]
	if hi == lo {
		return c.energies[i-1]
	}
	e0, e1 := c.energies[i-1], c.energies[i]
	return e0 + (u-lo)*(e1-e0)/(hi-lo)
}

// Draw samples an energy using one Float64 from rng, scaled by Total().
func (c *CumulativeDistribution) Draw(rng *rand.Rand) float64 {
	return c.Sample(rng.Float64() * c.Total())
}

// Total returns the integrated weight of the spectrum.
func (c *CumulativeDistribution) Total() float64 {
	return c.cumulative[len(c.cumulative)-1]
}

// Len returns the number of tabulated points.
func (c *CumulativeDistribution) Len() int {
	return len(c.energies)
}

// Energy returns the energy of point i.
func (c *CumulativeDistribution) Energy(i int) float64 {
	return c.energies[i]
}

// Value returns the cumulative weight at point i.
func (c *CumulativeDistribution) Value(i int) float64 {
	return c.cumulative[i]
}

// MinEnergy returns the lowest tabulated energy.
func (c *CumulativeDistribution) MinEnergy() float64 {
	return c.energies[0]
}

// MaxEnergy returns the highest tabulated energy.
func (c *CumulativeDistribution) MaxEnergy() float64 {
	return c.energies[len(c.energies)-1]
}

// CDF returns the normalised cumulative probability at energy e, using the
// same piecewise-linear relation that Sample inverts.
func (c *CumulativeDistribution) CDF(e float64) float64 {
	if e <= c.energies[0] {
		return 0
	}
	last := len(c.energies) - 1
	if e >= c.energies[last] {
		return 1
	}
	i := sort.SearchFloat64s(c.energies, e)
	e0, e1 := c.energies[i-1], c.energies[i]
	v := c.cumulative[i-1] + (e-e0)*(c.cumulative[i]-c.cumulative[i-1])/(e1-e0)
	return v / c.Total()
}
