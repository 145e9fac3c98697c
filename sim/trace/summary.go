package trace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// RunSummary aggregates statistics from a RunTrace.
type RunSummary struct {
	Events                int     `yaml:"events"`
	Primaries             int     `yaml:"primaries"`
	MeanPrimariesPerEvent float64 `yaml:"mean_primaries_per_event"`
	EnergyMean            float64 `yaml:"energy_mean"`
	EnergyStdDev          float64 `yaml:"energy_stddev"`
	MinEnergy             float64 `yaml:"min_energy"`
	MaxEnergy             float64 `yaml:"max_energy"`
	MeanDirection         r3.Vec  `yaml:"mean_direction"`
	VertexStdDev          r3.Vec  `yaml:"vertex_stddev"`
}

// Summarize computes aggregate statistics from a RunTrace. Energy moments are
// pooled over every primary of every event.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *RunSummary {
	summary := &RunSummary{}
	if rt == nil || len(rt.Records) == 0 {
		return summary
	}

	summary.Events = len(rt.Records)
	means := make([]float64, 0, len(rt.Records))
	weights := make([]float64, 0, len(rt.Records))
	xs := make([]float64, len(rt.Records))
	ys := make([]float64, len(rt.Records))
	zs := make([]float64, len(rt.Records))
	var dirSum r3.Vec
	summary.MinEnergy, summary.MaxEnergy = math.Inf(1), math.Inf(-1)
	for i, r := range rt.Records {
		xs[i], ys[i], zs[i] = r.Vertex.X, r.Vertex.Y, r.Vertex.Z
		if r.NumPrimaries == 0 {
			continue
		}
		summary.Primaries += r.NumPrimaries
		means = append(means, r.MeanEnergy)
		weights = append(weights, float64(r.NumPrimaries))
		dirSum = r3.Add(dirSum, r3.Scale(float64(r.NumPrimaries), r.MeanDirection))
		summary.MinEnergy = math.Min(summary.MinEnergy, r.MinEnergy)
		summary.MaxEnergy = math.Max(summary.MaxEnergy, r.MaxEnergy)
	}
	summary.MeanPrimariesPerEvent = float64(summary.Primaries) / float64(summary.Events)
	if summary.Events > 1 {
		summary.VertexStdDev = r3.Vec{X: stat.StdDev(xs, nil), Y: stat.StdDev(ys, nil), Z: stat.StdDev(zs, nil)}
	}
	if summary.Primaries == 0 {
		summary.MinEnergy, summary.MaxEnergy = 0, 0
		return summary
	}

	summary.EnergyMean = stat.Mean(means, weights)
	summary.MeanDirection = r3.Scale(1/float64(summary.Primaries), dirSum)
	if summary.Primaries > 1 {
		// Within-event plus between-event sums of squares.
		ss := 0.0
		for _, r := range rt.Records {
			if r.NumPrimaries == 0 {
				continue
			}
			d := r.MeanEnergy - summary.EnergyMean
			ss += float64(r.NumPrimaries-1)*r.EnergyVariance + float64(r.NumPrimaries)*d*d
		}
		summary.EnergyStdDev = math.Sqrt(ss / float64(summary.Primaries-1))
	}
	return summary
}
