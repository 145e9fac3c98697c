package generator

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/direction"
	"github.com/scint-sim/scint-sim/sim/geometry"
	"github.com/scint-sim/scint-sim/sim/spectrum"
)

// countingSink records every vertex it receives.
type countingSink struct {
	vertices []*sim.Vertex
}

func (s *countingSink) AddPrimaryVertex(v *sim.Vertex) {
	s.vertices = append(s.vertices, v)
}

// brokenGeometry claims every region but fails to sample it.
type brokenGeometry struct{}

func (brokenGeometry) HasRegion(string) bool { return true }

func (brokenGeometry) GenerateVertex(string, *rand.Rand) (r3.Vec, error) {
	return r3.Vec{}, errors.New("mesh not loaded")
}

func testGeometry(t *testing.T) *geometry.BodyGeometry {
	t.Helper()
	g, err := geometry.NewBodyGeometry(geometry.Body{
		Name: "ACTIVE", Type: geometry.BodyCylinder, Radius: 100, HalfLength: 150,
	})
	require.NoError(t, err)
	return g
}

func adHocConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.NumPrimaries = n
	cfg.Region = sim.RegionAdHoc
	cfg.AdHocVertex = &r3.Vec{X: 1, Y: 2, Z: 3}
	return cfg
}

func activeConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.NumPrimaries = n
	cfg.Region = "ACTIVE"
	return cfg
}

func newGenerator(t *testing.T, cfg Config) *PrimaryEventGenerator {
	t.Helper()
	gen, err := New(cfg, testGeometry(t), spectrum.DefaultLibrary())
	require.NoError(t, err)
	return gen
}

func generate(t *testing.T, gen *PrimaryEventGenerator, seed int64) *sim.Event {
	t.Helper()
	ev := sim.NewEvent(0)
	require.NoError(t, gen.GenerateEvent(ev, rand.New(rand.NewSource(seed))))
	return ev
}

func TestGenerateEvent_ZeroPrimaries_EmptyVertex(t *testing.T) {
	// GIVEN a generator configured for zero primaries
	gen := newGenerator(t, adHocConfig(0))
	sink := &countingSink{}

	// WHEN an event is generated
	require.NoError(t, gen.GenerateEvent(sink, rand.New(rand.NewSource(42))))

	// THEN exactly one vertex with no particles is attached
	require.Len(t, sink.vertices, 1)
	assert.Equal(t, 0, sink.vertices[0].NumPrimaries())
}

func TestGenerateEvent_AttachesExactlyNPrimaries(t *testing.T) {
	for _, n := range []int{1, 7, 1000} {
		sink := &countingSink{}
		gen := newGenerator(t, activeConfig(n))

		require.NoError(t, gen.GenerateEvent(sink, rand.New(rand.NewSource(42))))

		require.Len(t, sink.vertices, 1, "vertex must be attached exactly once")
		assert.Equal(t, n, sink.vertices[0].NumPrimaries())
	}
}

func TestGenerateEvent_SameSeed_BitIdentical(t *testing.T) {
	gen := newGenerator(t, activeConfig(500))

	a := generate(t, gen, 42)
	b := generate(t, gen, 42)

	assert.Equal(t, a, b)
}

func TestGenerateEvent_DifferentSeed_Differs(t *testing.T) {
	gen := newGenerator(t, activeConfig(500))

	a := generate(t, gen, 42)
	b := generate(t, gen, 43)

	assert.NotEqual(t, a.Vertices[0].Position, b.Vertices[0].Position)
	assert.NotEqual(t, a.Vertices[0].Primaries, b.Vertices[0].Primaries)
}

func TestGenerateEvent_DifferentSeed_Uncorrelated(t *testing.T) {
	// GIVEN events of 1e4 photons from seeds 42 and 43
	n := 10000
	gen := newGenerator(t, adHocConfig(n))
	a := generate(t, gen, 42)
	b := generate(t, gen, 43)

	// WHEN the i-th energies and direction components are paired
	ea, eb := make([]float64, n), make([]float64, n)
	za, zb := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		pa, pb := a.Vertices[0].Primaries[i], b.Vertices[0].Primaries[i]
		ea[i], eb[i] = pa.Energy(), pb.Energy()
		za[i], zb[i] = pa.Direction().Z, pb.Direction().Z
	}

	// THEN their sample correlations are within 5 sigma of zero
	assert.InDelta(t, 0.0, stat.Correlation(ea, eb, nil), 0.05, "energy correlation")
	assert.InDelta(t, 0.0, stat.Correlation(za, zb, nil), 0.05, "direction correlation")
}

func TestGenerateEvent_AdHoc_ExactVertex(t *testing.T) {
	gen := newGenerator(t, adHocConfig(10))

	// GIVEN random streams in different states
	for _, skip := range []int{0, 1, 17} {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < skip; i++ {
			rng.Float64()
		}
		ev := sim.NewEvent(0)

		// WHEN an event is generated
		require.NoError(t, gen.GenerateEvent(ev, rng))

		// THEN the vertex sits exactly at the configured point at t=0
		v := ev.Vertices[0]
		assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, v.Position)
		assert.Equal(t, 0.0, v.Time)
	}
}

func TestGenerateEvent_Kinematics(t *testing.T) {
	gen := newGenerator(t, activeConfig(20000))
	cdf := gen.Cumulative()
	require.NotNil(t, cdf)

	ev := generate(t, gen, 42)

	for _, p := range ev.Vertices[0].Primaries {
		require.Equal(t, sim.ParticleOpticalPhoton, p.Particle)
		e := p.Energy()
		require.GreaterOrEqual(t, e, cdf.MinEnergy()-1e-9)
		require.LessOrEqual(t, e, cdf.MaxEnergy()+1e-9)
		require.InDelta(t, 1.0, r3.Norm(p.Polarization), 1e-12)
	}
}

func TestGenerateEvent_DrawOrder(t *testing.T) {
	// GIVEN a generator and a replay of its draws from the same seed
	gen := newGenerator(t, adHocConfig(3))
	cdf := gen.Cumulative()
	replay := rand.New(rand.NewSource(42))

	// WHEN an event is generated
	ev := generate(t, gen, 42)

	// THEN each particle consumes energy, direction and polarization in turn
	for i, p := range ev.Vertices[0].Primaries {
		e := cdf.Draw(replay)
		dir := direction.UniformSphere(replay)
		pol := direction.UniformSphere(replay)
		assert.Equal(t, r3.Scale(e, dir), p.Momentum, "particle %d momentum", i)
		assert.Equal(t, pol, p.Polarization, "particle %d polarization", i)
	}
}

func TestGenerateEvent_BoundedDirection(t *testing.T) {
	cfg := adHocConfig(5000)
	cfg.Direction = direction.Spec{
		Type:   direction.TypeBounded,
		Window: direction.Window{CosThetaMin: 0.5, CosThetaMax: 1, PhiMin: 0, PhiMax: math.Pi},
	}
	gen := newGenerator(t, cfg)

	ev := generate(t, gen, 42)

	for _, p := range ev.Vertices[0].Primaries {
		d := p.Direction()
		require.Greater(t, d.Z, 0.5-1e-12)
		require.GreaterOrEqual(t, d.Y, -1e-12, "phi outside (0, pi)")
	}
}

func TestGenerateEvent_ConstantEnergy(t *testing.T) {
	cfg := adHocConfig(100)
	cfg.Energy = spectrum.EnergySpec{Type: spectrum.TypeConstant, Params: map[string]float64{"energy": 7.0}}
	gen, err := New(cfg, nil, nil)
	require.NoError(t, err)

	ev := generate(t, gen, 42)

	assert.Nil(t, gen.Cumulative())
	for _, p := range ev.Vertices[0].Primaries {
		require.InDelta(t, 7.0, p.Energy(), 1e-12)
	}
}

func TestGenerateEvent_GeometryFailure_AttachesNothing(t *testing.T) {
	gen, err := New(activeConfig(10), brokenGeometry{}, spectrum.DefaultLibrary())
	require.NoError(t, err)
	sink := &countingSink{}

	err = gen.GenerateEvent(sink, rand.New(rand.NewSource(42)))

	assert.ErrorContains(t, err, "mesh not loaded")
	assert.Empty(t, sink.vertices)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		geom   sim.VertexRegionProvider
		want   error
	}{
		{"unknown region", func(c *Config) { c.Region = "FOO" }, testGeometry(t), sim.ErrUnknownRegion},
		{"region absent from optical test", func(c *Config) {}, geometry.OpticalTest(), sim.ErrUnknownRegion},
		{"negative primaries", func(c *Config) { c.NumPrimaries = -1 }, testGeometry(t), sim.ErrInvalidConfig},
		{"empty particle", func(c *Config) { c.Particle = "" }, testGeometry(t), sim.ErrInvalidConfig},
		{"empty region", func(c *Config) { c.Region = "" }, testGeometry(t), sim.ErrInvalidConfig},
		{"ad hoc without vertex", func(c *Config) { c.Region = sim.RegionAdHoc }, nil, sim.ErrInvalidConfig},
		{"ad hoc with nan vertex", func(c *Config) {
			c.Region = sim.RegionAdHoc
			c.AdHocVertex = &r3.Vec{X: math.NaN()}
		}, nil, sim.ErrInvalidConfig},
		{"no geometry", func(c *Config) {}, nil, sim.ErrInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := activeConfig(10)
			tc.mutate(&cfg)

			_, err := New(cfg, tc.geom, spectrum.DefaultLibrary())

			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNew_SamplerErrors(t *testing.T) {
	t.Run("unknown spectrum", func(t *testing.T) {
		cfg := adHocConfig(1)
		cfg.Material = "NaI"
		_, err := New(cfg, nil, spectrum.DefaultLibrary())
		assert.ErrorIs(t, err, sim.ErrUnknownSpectrum)
	})
	t.Run("invalid spectrum", func(t *testing.T) {
		cfg := adHocConfig(1)
		_, err := New(cfg, nil, flatSpectrum{})
		assert.ErrorIs(t, err, sim.ErrInvalidSpectrum)
	})
	t.Run("empty window", func(t *testing.T) {
		cfg := adHocConfig(1)
		cfg.Direction = direction.Spec{Type: direction.TypeBounded}
		_, err := New(cfg, nil, spectrum.DefaultLibrary())
		assert.ErrorIs(t, err, sim.ErrInvalidRange)
	})
}

// flatSpectrum returns an all-zero table for every component.
type flatSpectrum struct{}

func (flatSpectrum) Spectrum(string, string) (sim.SpectrumTable, error) {
	return sim.SpectrumTable{{Energy: 1, Weight: 0}, {Energy: 2, Weight: 0}}, nil
}

func TestConfig_ReturnsCopy(t *testing.T) {
	cfg := adHocConfig(5)
	gen := newGenerator(t, cfg)

	// WHEN the caller mutates both its own config and the returned copy
	cfg.AdHocVertex.X = 99
	got := gen.Config()
	got.AdHocVertex.Y = 99

	// THEN the generator keeps emitting at the original point
	ev := generate(t, gen, 1)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, ev.Vertices[0].Position)
}
