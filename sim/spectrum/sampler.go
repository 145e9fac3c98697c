package spectrum

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/scint-sim/scint-sim/sim"
)

// EnergySampler draws primary energies in eV.
type EnergySampler interface {
	// Draw returns one energy using rng.
	Draw(rng *rand.Rand) float64
}

// UniformEnergy draws energies uniformly in [Min, Max).
type UniformEnergy struct {
	Min, Max float64
}

func (s UniformEnergy) Draw(rng *rand.Rand) float64 {
	if s.Min == s.Max {
		return s.Min
	}
	return rng.Float64()*(s.Max-s.Min) + s.Min
}

// Monoenergetic always returns the same energy and consumes no randomness.
type Monoenergetic struct {
	Energy float64
}

func (s Monoenergetic) Draw(_ *rand.Rand) float64 {
	return s.Energy
}

// Energy sampler types accepted by NewEnergySampler.
const (
	TypeSpectrum = "spectrum"
	TypeUniform  = "uniform"
	TypeConstant = "constant"
)

// EnergySpec selects and parameterises an energy sampler.
// An empty Type means TypeSpectrum.
type EnergySpec struct {
	Type   string             `yaml:"type,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map and are finite.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("%w: energy distribution requires parameter %q", sim.ErrInvalidConfig, k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: energy parameter %q must be finite, got %f", sim.ErrInvalidConfig, k, v)
		}
	}
	return nil
}

// NewEnergySampler creates an EnergySampler from spec. Spectrum samplers look
// up (material, component) in provider and build its cumulative distribution.
func NewEnergySampler(spec EnergySpec, provider sim.SpectrumProvider, material, component string) (EnergySampler, error) {
	switch spec.Type {
	case "", TypeSpectrum:
		if provider == nil {
			return nil, fmt.Errorf("%w: spectrum energy mode requires a spectrum provider", sim.ErrInvalidConfig)
		}
		table, err := provider.Spectrum(material, component)
		if err != nil {
			return nil, err
		}
		cdf, err := BuildCumulative(table)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", material, component, err)
		}
		return cdf, nil

	case TypeUniform:
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo <= 0 || hi < lo {
			return nil, fmt.Errorf("%w: uniform energy needs 0 < min <= max, got [%g, %g]", sim.ErrInvalidConfig, lo, hi)
		}
		return UniformEnergy{Min: lo, Max: hi}, nil

	case TypeConstant:
		if err := requireParam(spec.Params, "energy"); err != nil {
			return nil, err
		}
		e := spec.Params["energy"]
		if e <= 0 {
			return nil, fmt.Errorf("%w: constant energy must be positive, got %g", sim.ErrInvalidConfig, e)
		}
		return Monoenergetic{Energy: e}, nil

	default:
		return nil, fmt.Errorf("%w: unknown energy distribution type %q", sim.ErrInvalidConfig, spec.Type)
	}
}
