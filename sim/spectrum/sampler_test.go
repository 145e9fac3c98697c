package spectrum

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scint-sim/scint-sim/sim"
)

func TestNewEnergySampler_DefaultIsSpectrum(t *testing.T) {
	s, err := NewEnergySampler(EnergySpec{}, DefaultLibrary(), "LXe", ComponentFast)
	require.NoError(t, err)

	cdf, ok := s.(*CumulativeDistribution)
	require.True(t, ok, "expected *CumulativeDistribution, got %T", s)
	assert.InDelta(t, 6.97-4*0.23, cdf.MinEnergy(), 1e-12)
}

func TestNewEnergySampler_UnknownSpectrum(t *testing.T) {
	_, err := NewEnergySampler(EnergySpec{Type: TypeSpectrum}, DefaultLibrary(), "NaI", ComponentFast)
	assert.ErrorIs(t, err, sim.ErrUnknownSpectrum)
}

func TestNewEnergySampler_Uniform(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewEnergySampler(EnergySpec{Type: TypeUniform, Params: map[string]float64{"min": 2, "max": 3}}, nil, "", "")
	require.NoError(t, err)

	sum := 0.0
	n := 10000
	for i := 0; i < n; i++ {
		e := s.Draw(rng)
		if e < 2 || e >= 3 {
			t.Fatalf("sample %d: %g outside [2, 3)", i, e)
		}
		sum += e
	}
	assert.InDelta(t, 2.5, sum/float64(n), 0.01)
}

func TestUniformEnergy_DegenerateRangeReturnsMin(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	before := rand.New(rand.NewSource(1)).Float64()

	assert.Equal(t, 4.0, UniformEnergy{Min: 4, Max: 4}.Draw(rng))
	assert.Equal(t, before, rng.Float64(), "degenerate range must not consume randomness")
}

func TestNewEnergySampler_Constant(t *testing.T) {
	s, err := NewEnergySampler(EnergySpec{Type: TypeConstant, Params: map[string]float64{"energy": 7.1}}, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, 7.1, s.Draw(nil))
}

func TestNewEnergySampler_InvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec EnergySpec
	}{
		{"unknown type", EnergySpec{Type: "lorentzian"}},
		{"uniform missing max", EnergySpec{Type: TypeUniform, Params: map[string]float64{"min": 1}}},
		{"uniform inverted", EnergySpec{Type: TypeUniform, Params: map[string]float64{"min": 3, "max": 1}}},
		{"constant missing", EnergySpec{Type: TypeConstant}},
		{"constant negative", EnergySpec{Type: TypeConstant, Params: map[string]float64{"energy": -1}}},
		{"spectrum without provider", EnergySpec{Type: TypeSpectrum}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnergySampler(tt.spec, nil, "LXe", ComponentFast)
			assert.ErrorIs(t, err, sim.ErrInvalidConfig)
		})
	}
}
