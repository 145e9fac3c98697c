package generator

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/direction"
	"github.com/scint-sim/scint-sim/sim/spectrum"
)

// PrimaryEventGenerator fills events with one primary vertex each.
//
// It holds only immutable state after New returns, so a single generator may
// serve several goroutines provided each passes its own *rand.Rand.
type PrimaryEventGenerator struct {
	cfg       Config
	geom      sim.VertexRegionProvider
	energy    spectrum.EnergySampler
	direction direction.Sampler
}

// New validates cfg, resolves its region against geom and builds the energy
// and direction samplers. geom may be nil only for the AD_HOC region;
// spectra may be nil unless the energy mode is spectrum.
func New(cfg Config, geom sim.VertexRegionProvider, spectra sim.SpectrumProvider) (*PrimaryEventGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Region != sim.RegionAdHoc {
		if geom == nil {
			return nil, fmt.Errorf("%w: region %q needs a geometry", sim.ErrInvalidConfig, cfg.Region)
		}
		if !geom.HasRegion(cfg.Region) {
			return nil, fmt.Errorf("%w: %q", sim.ErrUnknownRegion, cfg.Region)
		}
	}
	if cfg.AdHocVertex != nil {
		v := *cfg.AdHocVertex
		cfg.AdHocVertex = &v
	}

	energy, err := spectrum.NewEnergySampler(cfg.Energy, spectra, cfg.Material, cfg.Component)
	if err != nil {
		return nil, fmt.Errorf("energy sampler: %w", err)
	}
	dir, err := direction.NewSampler(cfg.Direction)
	if err != nil {
		return nil, fmt.Errorf("direction sampler: %w", err)
	}

	logrus.Infof("generator: %d x %s per event, region %s, energy %s, direction %s",
		cfg.NumPrimaries, cfg.Particle, cfg.Region, energyLabel(cfg), directionLabel(cfg.Direction))

	return &PrimaryEventGenerator{
		cfg:       cfg,
		geom:      geom,
		energy:    energy,
		direction: dir,
	}, nil
}

func energyLabel(cfg Config) string {
	switch cfg.Energy.Type {
	case "", spectrum.TypeSpectrum:
		return cfg.Material + "/" + cfg.Component
	default:
		return cfg.Energy.Type
	}
}

func directionLabel(spec direction.Spec) string {
	if spec.Type == "" {
		return direction.TypeIsotropic
	}
	return spec.Type
}

// GenerateEvent attaches one vertex carrying NumPrimaries particles to event.
//
// All randomness comes from rng. Per particle the draw order is fixed:
// energy, then momentum direction, then polarization. The vertex is handed to
// event exactly once; on error nothing is attached.
func (g *PrimaryEventGenerator) GenerateEvent(event sim.EventSink, rng *rand.Rand) error {
	pos, err := g.vertexPosition(rng)
	if err != nil {
		return err
	}

	vertex := sim.NewVertex(pos, 0, g.cfg.NumPrimaries)
	for i := 0; i < g.cfg.NumPrimaries; i++ {
		e := g.energy.Draw(rng)
		dir := g.direction.Sample(rng)
		// Polarization is drawn independently of the momentum direction.
		pol := direction.UniformSphere(rng)
		vertex.AddPrimary(sim.PrimaryParticle{
			Particle:     g.cfg.Particle,
			Momentum:     r3.Scale(e, dir),
			Polarization: pol,
		})
	}
	event.AddPrimaryVertex(vertex)
	return nil
}

func (g *PrimaryEventGenerator) vertexPosition(rng *rand.Rand) (r3.Vec, error) {
	if g.cfg.Region == sim.RegionAdHoc {
		return *g.cfg.AdHocVertex, nil
	}
	pos, err := g.geom.GenerateVertex(g.cfg.Region, rng)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("vertex for region %q: %w", g.cfg.Region, err)
	}
	return pos, nil
}

// Config returns a copy of the validated configuration.
func (g *PrimaryEventGenerator) Config() Config {
	cfg := g.cfg
	if cfg.AdHocVertex != nil {
		v := *cfg.AdHocVertex
		cfg.AdHocVertex = &v
	}
	return cfg
}

// Cumulative returns the tabulated cumulative distribution behind the energy
// sampler, or nil when energies are not drawn from a spectrum.
func (g *PrimaryEventGenerator) Cumulative() *spectrum.CumulativeDistribution {
	cdf, _ := g.energy.(*spectrum.CumulativeDistribution)
	return cdf
}
