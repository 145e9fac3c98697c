package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/direction"
	"github.com/scint-sim/scint-sim/sim/geometry"
	"github.com/scint-sim/scint-sim/sim/spectrum"
)

// Spec is the top-level run configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Seed         *int64         `yaml:"seed,omitempty"`   // nil: caller's default
	Events       *int           `yaml:"events,omitempty"` // nil: caller's default
	Workers      int            `yaml:"workers,omitempty"`
	SingleStream bool           `yaml:"single_stream,omitempty"` // see RunConfig.SingleStream
	Generator    GeneratorSpec  `yaml:"generator"`
	Geometry     *geometry.Spec `yaml:"geometry,omitempty"`
	Spectra      []SpectrumSpec `yaml:"spectra,omitempty"`
}

// GeneratorSpec is the YAML form of Config. Omitted fields take the values
// of DefaultConfig.
type GeneratorSpec struct {
	Particle  string              `yaml:"particle,omitempty"`
	Primaries *int                `yaml:"primaries,omitempty"`
	Region    string              `yaml:"region"`
	Vertex    []float64           `yaml:"vertex,omitempty"` // [x, y, z] mm, AD_HOC only
	Material  string              `yaml:"material,omitempty"`
	Component string              `yaml:"component,omitempty"`
	Energy    spectrum.EnergySpec `yaml:"energy,omitempty"`
	Direction direction.Spec      `yaml:"direction,omitempty"`
}

// SpectrumSpec registers an extra emission spectrum, read from a CSV file or
// given inline.
type SpectrumSpec struct {
	Material  string            `yaml:"material"`
	Component string            `yaml:"component"`
	File      string            `yaml:"file,omitempty"`
	Points    sim.SpectrumTable `yaml:"points,omitempty"`
}

// LoadSpec reads and parses a YAML run specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Relative spectrum file paths are resolved against the spec's directory.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run spec: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i := range spec.Spectra {
		if f := spec.Spectra[i].File; f != "" && !filepath.IsAbs(f) {
			spec.Spectra[i].File = filepath.Join(dir, f)
		}
	}
	return spec, nil
}

// ParseSpec decodes a YAML run specification.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing run spec: %w", err)
	}
	return &spec, nil
}

// Validate checks the run-level fields and the generator section.
func (s *Spec) Validate() error {
	if s.Events != nil && *s.Events < 0 {
		return fmt.Errorf("%w: events must be non-negative, got %d", sim.ErrInvalidConfig, *s.Events)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", sim.ErrInvalidConfig, s.Workers)
	}
	for i, sp := range s.Spectra {
		prefix := fmt.Sprintf("spectra[%d]", i)
		if sp.Material == "" || sp.Component == "" {
			return fmt.Errorf("%w: %s: material and component are required", sim.ErrInvalidConfig, prefix)
		}
		if (sp.File == "") == (len(sp.Points) == 0) {
			return fmt.Errorf("%w: %s: exactly one of file or points is required", sim.ErrInvalidConfig, prefix)
		}
	}
	_, err := s.GeneratorConfig()
	return err
}

// RunConfig returns the batch parameters of the spec. Absent seed and
// events count as zero.
func (s *Spec) RunConfig() RunConfig {
	rc := RunConfig{Workers: s.Workers, SingleStream: s.SingleStream}
	if s.Seed != nil {
		rc.Seed = *s.Seed
	}
	if s.Events != nil {
		rc.Events = *s.Events
	}
	return rc
}

// GeneratorConfig converts the generator section into a validated Config.
func (s *Spec) GeneratorConfig() (Config, error) {
	g := s.Generator
	cfg := DefaultConfig()
	cfg.Region = g.Region
	if g.Particle != "" {
		cfg.Particle = g.Particle
	}
	if g.Primaries != nil {
		cfg.NumPrimaries = *g.Primaries
	}
	if g.Material != "" {
		cfg.Material = g.Material
	}
	if g.Component != "" {
		cfg.Component = g.Component
	}
	if g.Energy.Type != "" || len(g.Energy.Params) > 0 {
		cfg.Energy = g.Energy
	}
	if g.Direction.Type != "" {
		cfg.Direction = g.Direction
	}
	if len(g.Vertex) > 0 {
		v, err := ParseVertex(g.Vertex)
		if err != nil {
			return Config{}, err
		}
		cfg.AdHocVertex = &v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseVertex converts an [x, y, z] triple into a position.
func ParseVertex(xyz []float64) (r3.Vec, error) {
	if len(xyz) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: vertex needs 3 coordinates, got %d", sim.ErrInvalidConfig, len(xyz))
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// BuildGeometry returns the geometry described by the spec, or the optical
// test geometry when the spec has none.
func (s *Spec) BuildGeometry() (*geometry.BodyGeometry, error) {
	if s.Geometry == nil {
		return geometry.OpticalTest(), nil
	}
	return geometry.NewBodyGeometry(s.Geometry.Bodies...)
}

// BuildLibrary returns the default spectrum library extended with the
// spec's extra spectra.
func (s *Spec) BuildLibrary() (*spectrum.Library, error) {
	lib := spectrum.DefaultLibrary()
	for _, sp := range s.Spectra {
		table := sp.Points
		if sp.File != "" {
			var err error
			table, err = spectrum.LoadTableCSV(sp.File)
			if err != nil {
				return nil, err
			}
		}
		if err := lib.Register(sp.Material, sp.Component, table); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
