// Package direction draws unit vectors, isotropically or restricted to a
// polar/azimuthal window by rejection.
package direction

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/scint-sim/scint-sim/sim"
)

// lowAcceptance is the window acceptance below which construction warns.
const lowAcceptance = 0.01

// Sampler draws unit direction vectors.
type Sampler interface {
	Sample(rng *rand.Rand) r3.Vec
}

// UniformSphere returns a direction uniformly distributed on the unit sphere.
// It consumes two Float64 draws: cosθ first, then φ.
func UniformSphere(rng *rand.Rand) r3.Vec {
	cosTheta := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	return fromAngles(cosTheta, phi)
}

func fromAngles(cosTheta, phi float64) r3.Vec {
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return r3.Unit(r3.Vec{
		X: sinTheta * math.Cos(phi),
		Y: sinTheta * math.Sin(phi),
		Z: cosTheta,
	})
}

// Window is an angular acceptance region. Bounds are exclusive:
// a direction is accepted when CosThetaMin < cosθ < CosThetaMax and
// PhiMin < φ < PhiMax, with φ in radians on [0, 2π).
type Window struct {
	CosThetaMin float64 `yaml:"cos_theta_min"`
	CosThetaMax float64 `yaml:"cos_theta_max"`
	PhiMin      float64 `yaml:"phi_min"`
	PhiMax      float64 `yaml:"phi_max"`
}

// FullSphere is the window covering every direction.
var FullSphere = Window{CosThetaMin: -1, CosThetaMax: 1, PhiMin: 0, PhiMax: 2 * math.Pi}

// Validate reports sim.ErrInvalidRange unless -1 <= CosThetaMin < CosThetaMax <= 1
// and 0 <= PhiMin < PhiMax <= 2π.
func (w Window) Validate() error {
	for _, v := range []float64{w.CosThetaMin, w.CosThetaMax, w.PhiMin, w.PhiMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: window bounds must be finite, got %+v", sim.ErrInvalidRange, w)
		}
	}
	if w.CosThetaMin < -1 || w.CosThetaMax > 1 || w.CosThetaMin >= w.CosThetaMax {
		return fmt.Errorf("%w: need -1 <= cos_theta_min < cos_theta_max <= 1, got [%g, %g]",
			sim.ErrInvalidRange, w.CosThetaMin, w.CosThetaMax)
	}
	if w.PhiMin < 0 || w.PhiMax > 2*math.Pi || w.PhiMin >= w.PhiMax {
		return fmt.Errorf("%w: need 0 <= phi_min < phi_max <= 2π, got [%g, %g]",
			sim.ErrInvalidRange, w.PhiMin, w.PhiMax)
	}
	return nil
}

// Acceptance returns the fraction of isotropic directions inside the window,
// (cosMax-cosMin)(phiMax-phiMin)/(4π). The rejection loop needs 1/Acceptance
// candidates on average.
func (w Window) Acceptance() float64 {
	return (w.CosThetaMax - w.CosThetaMin) * (w.PhiMax - w.PhiMin) / (4 * math.Pi)
}

// BoundedDirection validates w and draws one direction inside it.
// Prefer NewBounded when sampling repeatedly from the same window.
func BoundedDirection(w Window, rng *rand.Rand) (r3.Vec, error) {
	if err := w.Validate(); err != nil {
		return r3.Vec{}, err
	}
	return sampleWindow(w, rng), nil
}

// sampleWindow draws cosθ until it falls strictly inside the polar window,
// then draws φ; a φ outside the azimuthal window restarts the loop.
func sampleWindow(w Window, rng *rand.Rand) r3.Vec {
	for {
		cosTheta := 2*rng.Float64() - 1
		if cosTheta <= w.CosThetaMin || cosTheta >= w.CosThetaMax {
			continue
		}
		phi := 2 * math.Pi * rng.Float64()
		if phi <= w.PhiMin || phi >= w.PhiMax {
			continue
		}
		return fromAngles(cosTheta, phi)
	}
}

// Isotropic samples the full unit sphere.
type Isotropic struct{}

func (Isotropic) Sample(rng *rand.Rand) r3.Vec {
	return UniformSphere(rng)
}

// Bounded samples a validated angular window.
type Bounded struct {
	window Window
}

// NewBounded validates w once so that Sample cannot loop forever.
func NewBounded(w Window) (*Bounded, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if a := w.Acceptance(); a < lowAcceptance {
		logrus.Warnf("direction window acceptance %.4f is below %.2f; expect ~%.0f draws per direction",
			a, lowAcceptance, 1/a)
	}
	return &Bounded{window: w}, nil
}

func (b *Bounded) Sample(rng *rand.Rand) r3.Vec {
	return sampleWindow(b.window, rng)
}

// Window returns the configured window.
func (b *Bounded) Window() Window {
	return b.window
}
