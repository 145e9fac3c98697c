// Package generator builds the primary vertex of each simulated event: one
// space-time point carrying N particles whose energies follow an emission
// spectrum and whose directions are isotropic or bounded to an angular window.
package generator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/direction"
	"github.com/scint-sim/scint-sim/sim/spectrum"
)

// DefaultNumPrimaries is the photon count per event when none is configured.
const DefaultNumPrimaries = 100000

// Config groups the generator parameters. It is validated once, at
// construction; changing it means building a new generator.
type Config struct {
	Particle     string // particle-type identifier
	NumPrimaries int    // primaries per event, >= 0
	Region       string // geometry region, or sim.RegionAdHoc
	AdHocVertex  *r3.Vec
	Material     string // spectrum lookup key, e.g. "LXe"
	Component    string // spectrum lookup key, e.g. "FASTCOMPONENT"
	Energy       spectrum.EnergySpec
	Direction    direction.Spec
}

// DefaultConfig returns an optical-photon configuration sampling the fast
// liquid xenon spectrum isotropically. Region is left for the caller.
func DefaultConfig() Config {
	return Config{
		Particle:     sim.ParticleOpticalPhoton,
		NumPrimaries: DefaultNumPrimaries,
		Material:     "LXe",
		Component:    spectrum.ComponentFast,
		Energy:       spectrum.EnergySpec{Type: spectrum.TypeSpectrum},
		Direction:    direction.Spec{Type: direction.TypeIsotropic},
	}
}

// Validate checks the fields that need no collaborator to verify.
func (c Config) Validate() error {
	if c.Particle == "" {
		return fmt.Errorf("%w: particle is required", sim.ErrInvalidConfig)
	}
	if c.NumPrimaries < 0 {
		return fmt.Errorf("%w: primaries must be non-negative, got %d", sim.ErrInvalidConfig, c.NumPrimaries)
	}
	if c.Region == "" {
		return fmt.Errorf("%w: region is required", sim.ErrInvalidConfig)
	}
	if c.Region == sim.RegionAdHoc {
		if c.AdHocVertex == nil {
			return fmt.Errorf("%w: region %s requires a vertex coordinate", sim.ErrInvalidConfig, sim.RegionAdHoc)
		}
		v := *c.AdHocVertex
		for _, x := range []float64{v.X, v.Y, v.Z} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: vertex coordinate must be finite, got %v", sim.ErrInvalidConfig, v)
			}
		}
	}
	return nil
}
