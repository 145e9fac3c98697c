package trace

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/internal/testutil"
)

func photon(e float64, dir r3.Vec) sim.PrimaryParticle {
	return sim.PrimaryParticle{
		Particle:     sim.ParticleOpticalPhoton,
		Momentum:     r3.Scale(e, dir),
		Polarization: r3.Vec{Z: 1},
	}
}

// makeEvent builds an event with one vertex carrying photons of the given energies along +x.
func makeEvent(id int, pos r3.Vec, energies ...float64) *sim.Event {
	ev := sim.NewEvent(id)
	v := sim.NewVertex(pos, 0, len(energies))
	for _, e := range energies {
		v.AddPrimary(photon(e, r3.Vec{X: 1}))
	}
	ev.AddPrimaryVertex(v)
	return ev
}

func TestNewEventRecord_Moments(t *testing.T) {
	// GIVEN an event with three photons
	ev := makeEvent(7, r3.Vec{X: 1, Y: 2, Z: 3}, 6.0, 7.0, 8.0)

	// WHEN recorded
	rec := NewEventRecord(ev)

	// THEN the record carries the event moments
	assert.Equal(t, 7, rec.EventID)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, rec.Vertex)
	assert.Equal(t, 3, rec.NumPrimaries)
	assert.InDelta(t, 7.0, rec.MeanEnergy, 1e-12)
	assert.InDelta(t, 1.0, rec.EnergyVariance, 1e-12)
	assert.Equal(t, 6.0, rec.MinEnergy)
	assert.Equal(t, 8.0, rec.MaxEnergy)
	assert.InDelta(t, 1.0, rec.MeanDirection.X, 1e-12)
}

func TestNewEventRecord_EmptyEvents(t *testing.T) {
	rec := NewEventRecord(sim.NewEvent(3))
	assert.Equal(t, EventRecord{EventID: 3}, rec)

	rec = NewEventRecord(makeEvent(4, r3.Vec{Z: 5}))
	assert.Equal(t, 0, rec.NumPrimaries)
	assert.Equal(t, r3.Vec{Z: 5}, rec.Vertex)
	assert.Equal(t, 0.0, rec.MinEnergy)
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	assert.Equal(t, &RunSummary{}, Summarize(nil))
	assert.Equal(t, &RunSummary{}, Summarize(NewRunTrace(NewRunHeader())))
}

func TestSummarize_PooledMoments(t *testing.T) {
	// GIVEN two events whose energies pooled are 1..6
	rt := NewRunTrace(NewRunHeader())
	rt.Record(makeEvent(0, r3.Vec{X: -1}, 1, 2, 3, 4))
	rt.Record(makeEvent(1, r3.Vec{X: 1}, 5, 6))

	// WHEN summarized
	s := Summarize(rt)

	// THEN the moments match a single pass over all primaries
	assert.Equal(t, 2, s.Events)
	assert.Equal(t, 6, s.Primaries)
	assert.InDelta(t, 3.0, s.MeanPrimariesPerEvent, 1e-12)
	assert.InDelta(t, 3.5, s.EnergyMean, 1e-12)
	testutil.AssertFloat64Equal(t, "energy stddev", math.Sqrt(3.5), s.EnergyStdDev, 1e-12)
	assert.Equal(t, 1.0, s.MinEnergy)
	assert.Equal(t, 6.0, s.MaxEnergy)
	assert.InDelta(t, 1.0, s.MeanDirection.X, 1e-12)
	assert.InDelta(t, math.Sqrt2, s.VertexStdDev.X, 1e-12)
}

func TestSummarize_OnlyEmptyEvents(t *testing.T) {
	rt := NewRunTrace(NewRunHeader())
	rt.Record(makeEvent(0, r3.Vec{}))

	s := Summarize(rt)

	assert.Equal(t, 1, s.Events)
	assert.Equal(t, 0, s.Primaries)
	assert.Equal(t, 0.0, s.MinEnergy)
	assert.Equal(t, 0.0, s.MaxEnergy)
}

func TestExportRun_WritesHeaderAndData(t *testing.T) {
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "run.yaml")
	dataPath := filepath.Join(dir, "events.csv")

	header := NewRunHeader()
	header.Seed = 42
	header.Events = 2
	rt := NewRunTrace(header)
	rt.Record(makeEvent(0, r3.Vec{X: 0.1}, 7.25))
	rt.Record(makeEvent(1, r3.Vec{}, 6.5, 7.5))
	rt.Header.Summary = Summarize(rt)

	// WHEN exported
	require.NoError(t, ExportRun(&rt.Header, rt.Records, headerPath, dataPath))

	// THEN the header round-trips through YAML
	data, err := os.ReadFile(headerPath)
	require.NoError(t, err)
	var got RunHeader
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, Version, got.Version)
	assert.Equal(t, "eV", got.EnergyUnit)
	assert.Equal(t, int64(42), got.Seed)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 3, got.Summary.Primaries)

	// THEN the CSV has one row per event with full-precision floats
	f, err := os.Open(dataPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, eventColumns, rows[0])
	assert.Equal(t, "0.1", rows[1][1])
	assert.Equal(t, "7.25", rows[1][6])
	assert.Equal(t, "2", rows[2][5])
}

func TestExportPrimariesCSV(t *testing.T) {
	var buf bytes.Buffer
	events := []*sim.Event{
		makeEvent(0, r3.Vec{X: 1, Y: 2, Z: 3}, 7.0, 7.5),
		makeEvent(1, r3.Vec{}),
		makeEvent(2, r3.Vec{}, 6.0),
	}

	require.NoError(t, ExportPrimariesCSV(&buf, events))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus one row per primary")
	assert.Equal(t, primaryColumns, rows[0])
	assert.Equal(t, []string{"0", "0", "opticalphoton", "1", "2", "3", "0", "7", "0", "0", "0", "0", "1", "7"}, rows[1])
	assert.Equal(t, "2", rows[3][0])
	e, err := strconv.ParseFloat(rows[2][13], 64)
	require.NoError(t, err)
	assert.Equal(t, 7.5, e)
}

func TestPrimaryWriter_NoEvents_NoOutput(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewPrimaryWriter(&buf).Flush())

	assert.Empty(t, buf.String())
}
