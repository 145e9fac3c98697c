package spectrum

import (
	"fmt"
	"math"
	"sort"

	"github.com/scint-sim/scint-sim/sim"
)

// Scintillation component names.
const (
	ComponentFast = "FASTCOMPONENT"
	ComponentSlow = "SLOWCOMPONENT"
)

type componentKey struct {
	material, component string
}

// Library is a SpectrumProvider backed by an in-memory table registry.
// Register everything before handing the library to generators; lookups
// after that are read-only and safe for concurrent use.
type Library struct {
	tables map[componentKey]sim.SpectrumTable
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{tables: make(map[componentKey]sim.SpectrumTable)}
}

// DefaultLibrary returns a Library holding the xenon scintillation spectra.
// Fast and slow components share one emission spectrum; they differ only in
// decay time, which primaries at t=0 do not use.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	lxe := GaussianTable(6.97, 0.23, 4, 81)
	gxe := GaussianTable(7.21, 0.15, 4, 81)
	for _, c := range []string{ComponentFast, ComponentSlow} {
		lib.mustRegister("LXe", c, lxe)
		lib.mustRegister("GXe", c, gxe)
	}
	return lib
}

// Register adds or replaces a table after validating that it can be sampled.
func (l *Library) Register(material, component string, table sim.SpectrumTable) error {
	if material == "" || component == "" {
		return fmt.Errorf("%w: material and component names are required", sim.ErrInvalidConfig)
	}
	if _, err := BuildCumulative(table); err != nil {
		return fmt.Errorf("%s/%s: %w", material, component, err)
	}
	owned := make(sim.SpectrumTable, len(table))
	copy(owned, table)
	l.tables[componentKey{material, component}] = owned
	return nil
}

func (l *Library) mustRegister(material, component string, table sim.SpectrumTable) {
	if err := l.Register(material, component, table); err != nil {
		panic(err)
	}
}

// Spectrum returns a copy of the registered table.
func (l *Library) Spectrum(material, component string) (sim.SpectrumTable, error) {
	table, ok := l.tables[componentKey{material, component}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", sim.ErrUnknownSpectrum, material, component)
	}
	out := make(sim.SpectrumTable, len(table))
	copy(out, table)
	return out, nil
}

// Components lists registered "material/component" names, sorted.
func (l *Library) Components() []string {
	names := make([]string, 0, len(l.tables))
	for k := range l.tables {
		names = append(names, k.material+"/"+k.component)
	}
	sort.Strings(names)
	return names
}

// GaussianTable tabulates a Gaussian emission line of the given mean and
// sigma (eV) over mean ± nSigma·sigma using points evenly spaced samples.
func GaussianTable(mean, sigma, nSigma float64, points int) sim.SpectrumTable {
	if points < 2 {
		points = 2
	}
	lo := mean - nSigma*sigma
	step := 2 * nSigma * sigma / float64(points-1)
	table := make(sim.SpectrumTable, points)
	for i := range table {
		e := lo + float64(i)*step
		z := (e - mean) / sigma
		table[i] = sim.SpectrumPoint{Energy: e, Weight: math.Exp(-0.5 * z * z)}
	}
	return table
}
