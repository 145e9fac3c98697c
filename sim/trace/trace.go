package trace

import "github.com/scint-sim/scint-sim/sim"

// Version is the current trace format version.
const Version = 1

// RunHeader captures the configuration of a run for the trace header file.
type RunHeader struct {
	Version    int    `yaml:"trace_version"`
	EnergyUnit string `yaml:"energy_unit"`
	LengthUnit string `yaml:"length_unit"`
	CreatedAt  string `yaml:"created_at,omitempty"`
	RunSpec    string `yaml:"run_spec,omitempty"`

	Seed         int64  `yaml:"seed"`
	Events       int    `yaml:"events"`
	Workers      int    `yaml:"workers"`
	SingleStream bool   `yaml:"single_stream,omitempty"`
	Particle     string `yaml:"particle"`
	Primaries    int    `yaml:"primaries"`
	Region       string `yaml:"region"`
	Material     string `yaml:"material,omitempty"`
	Component    string `yaml:"component,omitempty"`
	Energy       string `yaml:"energy"`
	Direction    string `yaml:"direction"`

	Summary *RunSummary `yaml:"summary,omitempty"`
}

// NewRunHeader returns a header with the format version and units filled in.
func NewRunHeader() RunHeader {
	return RunHeader{Version: Version, EnergyUnit: "eV", LengthUnit: "mm"}
}

// RunTrace collects event records during a run.
type RunTrace struct {
	Header  RunHeader
	Records []EventRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(header RunHeader) *RunTrace {
	return &RunTrace{
		Header:  header,
		Records: make([]EventRecord, 0),
	}
}

// Record appends the summary of ev.
func (rt *RunTrace) Record(ev *sim.Event) {
	rt.Records = append(rt.Records, NewEventRecord(ev))
}
