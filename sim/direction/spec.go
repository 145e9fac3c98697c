package direction

import (
	"fmt"

	"github.com/scint-sim/scint-sim/sim"
)

// Direction sampler types accepted by NewSampler.
const (
	TypeIsotropic = "isotropic"
	TypeBounded   = "bounded"
)

// Spec selects a momentum direction sampler. An empty Type means isotropic;
// Window is only read for bounded sampling.
type Spec struct {
	Type   string `yaml:"type,omitempty"`
	Window `yaml:",inline"`
}

// NewSampler creates a Sampler from spec.
func NewSampler(spec Spec) (Sampler, error) {
	switch spec.Type {
	case "", TypeIsotropic:
		return Isotropic{}, nil
	case TypeBounded:
		b, err := NewBounded(spec.Window)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown direction type %q; valid: isotropic, bounded", sim.ErrInvalidConfig, spec.Type)
	}
}
