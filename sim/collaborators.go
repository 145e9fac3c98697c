package sim

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// RegionAdHoc is the reserved region name for a fixed, externally configured
// vertex. Generators resolve it without consulting the geometry.
const RegionAdHoc = "AD_HOC"

// VertexRegionProvider maps a region name to a vertex position.
// Implementations draw any randomness from the caller's rng so that a whole
// event is reproducible from one seed. Unknown regions fail with ErrUnknownRegion.
type VertexRegionProvider interface {
	GenerateVertex(region string, rng *rand.Rand) (r3.Vec, error)
	HasRegion(region string) bool
}

// SpectrumPoint is one (energy, intensity) sample of an emission spectrum.
type SpectrumPoint struct {
	Energy float64 `yaml:"energy"` // eV
	Weight float64 `yaml:"weight"` // arbitrary units, >= 0
}

// SpectrumTable is an emission spectrum tabulated by strictly increasing energy.
type SpectrumTable []SpectrumPoint

// SpectrumProvider looks up the emission spectrum of a material component,
// e.g. ("LXe", "FASTCOMPONENT"). Unknown pairs fail with ErrUnknownSpectrum.
type SpectrumProvider interface {
	Spectrum(material, component string) (SpectrumTable, error)
}
