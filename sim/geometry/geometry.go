package geometry

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/scint-sim/scint-sim/sim"
)

// BodyGeometry is a sim.VertexRegionProvider whose regions are named bodies.
// It is immutable after construction and safe for concurrent use.
type BodyGeometry struct {
	bodies map[string]Body
}

// NewBodyGeometry validates bodies and indexes them by name.
func NewBodyGeometry(bodies ...Body) (*BodyGeometry, error) {
	g := &BodyGeometry{bodies: make(map[string]Body, len(bodies))}
	for _, b := range bodies {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.bodies[b.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate region %q", ErrInvalidBody, b.Name)
		}
		g.bodies[b.Name] = b
	}
	return g, nil
}

// OpticalTest returns the geometry of the optical test bench, which exposes
// no sampled regions: primaries are shot from the AD_HOC vertex only.
func OpticalTest() *BodyGeometry {
	return &BodyGeometry{bodies: map[string]Body{}}
}

// GenerateVertex draws a point in the named region.
func (g *BodyGeometry) GenerateVertex(region string, rng *rand.Rand) (r3.Vec, error) {
	b, ok := g.bodies[region]
	if !ok {
		return r3.Vec{}, fmt.Errorf("%w: %q", sim.ErrUnknownRegion, region)
	}
	return b.Sample(rng), nil
}

// HasRegion reports whether region names a body of this geometry.
func (g *BodyGeometry) HasRegion(region string) bool {
	_, ok := g.bodies[region]
	return ok
}

// Regions returns the region names, sorted.
func (g *BodyGeometry) Regions() []string {
	names := make([]string, 0, len(g.bodies))
	for name := range g.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Body returns the body behind a region.
func (g *BodyGeometry) Body(region string) (Body, bool) {
	b, ok := g.bodies[region]
	return b, ok
}

// Spec is the YAML form of a body geometry.
type Spec struct {
	Bodies []Body `yaml:"bodies"`
}

// ParseSpec decodes a geometry YAML document.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing geometry spec: %w", err)
	}
	return &spec, nil
}

// Load reads a geometry YAML file and builds its BodyGeometry.
func Load(path string) (*BodyGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geometry spec: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, err
	}
	g, err := NewBodyGeometry(spec.Bodies...)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("geometry: loaded %d regions from %s", len(spec.Bodies), path)
	return g, nil
}

// CheckResult summarises a sampling self-check of one region.
type CheckResult struct {
	Region   string
	Samples  int
	Outside  int    // samples that fell outside the body
	Centroid r3.Vec // mean sampled position
}

// Check draws n vertices from region and verifies each lies inside its body.
func (g *BodyGeometry) Check(region string, n int, rng *rand.Rand) (CheckResult, error) {
	b, ok := g.bodies[region]
	if !ok {
		return CheckResult{}, fmt.Errorf("%w: %q", sim.ErrUnknownRegion, region)
	}
	res := CheckResult{Region: region, Samples: n}
	if n <= 0 {
		return res, nil
	}
	var sum r3.Vec
	for i := 0; i < n; i++ {
		p := b.Sample(rng)
		if !b.Contains(p) {
			res.Outside++
		}
		sum = r3.Add(sum, p)
	}
	res.Centroid = r3.Scale(1/float64(n), sum)
	return res, nil
}
