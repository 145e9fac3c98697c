// Package trace records per-event summaries of a generation run and exports
// them as a YAML header plus CSV data, alongside an optional per-primary CSV.
package trace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/scint-sim/scint-sim/sim"
)

// EventRecord summarises one generated event.
type EventRecord struct {
	EventID        int
	Vertex         r3.Vec // position of the first vertex, mm
	Time           float64
	NumPrimaries   int
	MeanEnergy     float64 // eV
	EnergyVariance float64 // unbiased; 0 below two primaries
	MinEnergy      float64
	MaxEnergy      float64
	MeanDirection  r3.Vec // mean of the unit momentum directions
}

// NewEventRecord computes the summary of ev. Events without vertices yield
// a record with only EventID set.
func NewEventRecord(ev *sim.Event) EventRecord {
	rec := EventRecord{EventID: ev.ID}
	if len(ev.Vertices) == 0 {
		return rec
	}
	rec.Vertex = ev.Vertices[0].Position
	rec.Time = ev.Vertices[0].Time

	n := ev.NumPrimaries()
	rec.NumPrimaries = n
	if n == 0 {
		return rec
	}
	energies := make([]float64, 0, n)
	var dirSum r3.Vec
	rec.MinEnergy, rec.MaxEnergy = math.Inf(1), math.Inf(-1)
	for _, v := range ev.Vertices {
		for _, p := range v.Primaries {
			e := p.Energy()
			energies = append(energies, e)
			rec.MinEnergy = math.Min(rec.MinEnergy, e)
			rec.MaxEnergy = math.Max(rec.MaxEnergy, e)
			dirSum = r3.Add(dirSum, p.Direction())
		}
	}
	if n > 1 {
		rec.MeanEnergy, rec.EnergyVariance = stat.MeanVariance(energies, nil)
	} else {
		rec.MeanEnergy = energies[0]
	}
	rec.MeanDirection = r3.Scale(1/float64(n), dirSum)
	return rec
}
