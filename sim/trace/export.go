package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/scint-sim/scint-sim/sim"
)

// CSV column headers for the event summary file.
var eventColumns = []string{
	"event_id", "vertex_x_mm", "vertex_y_mm", "vertex_z_mm", "time_ns", "num_primaries",
	"mean_energy_ev", "energy_variance", "min_energy_ev", "max_energy_ev",
	"mean_dir_x", "mean_dir_y", "mean_dir_z",
}

// CSV column headers for the per-primary file.
var primaryColumns = []string{
	"event_id", "vertex", "particle", "x_mm", "y_mm", "z_mm", "t_ns",
	"px_ev", "py_ev", "pz_ev", "pol_x", "pol_y", "pol_z", "energy_ev",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportRun writes the run header (YAML) and event records (CSV) to separate
// files. Floats are written with full precision.
func ExportRun(header *RunHeader, records []EventRecord, headerPath, dataPath string) error {
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling trace header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating trace data file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(eventColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.EventID),
			formatFloat(r.Vertex.X),
			formatFloat(r.Vertex.Y),
			formatFloat(r.Vertex.Z),
			formatFloat(r.Time),
			strconv.Itoa(r.NumPrimaries),
			formatFloat(r.MeanEnergy),
			formatFloat(r.EnergyVariance),
			formatFloat(r.MinEnergy),
			formatFloat(r.MaxEnergy),
			formatFloat(r.MeanDirection.X),
			formatFloat(r.MeanDirection.Y),
			formatFloat(r.MeanDirection.Z),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for event %d: %w", r.EventID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing trace data: %w", err)
	}
	return file.Close()
}

// PrimaryWriter streams one CSV row per primary particle.
type PrimaryWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewPrimaryWriter wraps w. The column header is written with the first event.
func NewPrimaryWriter(w io.Writer) *PrimaryWriter {
	return &PrimaryWriter{w: csv.NewWriter(w)}
}

// Write appends the primaries of ev.
func (pw *PrimaryWriter) Write(ev *sim.Event) error {
	if !pw.wroteHeader {
		if err := pw.w.Write(primaryColumns); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		pw.wroteHeader = true
	}
	for vi, v := range ev.Vertices {
		for _, p := range v.Primaries {
			row := []string{
				strconv.Itoa(ev.ID),
				strconv.Itoa(vi),
				p.Particle,
				formatFloat(v.Position.X),
				formatFloat(v.Position.Y),
				formatFloat(v.Position.Z),
				formatFloat(v.Time),
				formatFloat(p.Momentum.X),
				formatFloat(p.Momentum.Y),
				formatFloat(p.Momentum.Z),
				formatFloat(p.Polarization.X),
				formatFloat(p.Polarization.Y),
				formatFloat(p.Polarization.Z),
				formatFloat(p.Energy()),
			}
			if err := pw.w.Write(row); err != nil {
				return fmt.Errorf("writing primary of event %d: %w", ev.ID, err)
			}
		}
	}
	return nil
}

// Flush writes buffered rows and reports any write error.
func (pw *PrimaryWriter) Flush() error {
	pw.w.Flush()
	return pw.w.Error()
}

// ExportPrimariesCSV writes every primary of events to w.
func ExportPrimariesCSV(w io.Writer, events []*sim.Event) error {
	pw := NewPrimaryWriter(w)
	for _, ev := range events {
		if err := pw.Write(ev); err != nil {
			return err
		}
	}
	return pw.Flush()
}
