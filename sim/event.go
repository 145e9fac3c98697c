// Defines the host event representation filled in by primary generators.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ParticleOpticalPhoton is the default primary particle type.
const ParticleOpticalPhoton = "opticalphoton"

// PrimaryParticle is the initial kinematic state of one primary.
// Momentum magnitude equals the particle energy (massless convention).
type PrimaryParticle struct {
	Particle     string // particle-type identifier, e.g. "opticalphoton"
	Momentum     r3.Vec // eV
	Polarization r3.Vec // unit vector
}

// Energy returns the momentum magnitude.
func (p PrimaryParticle) Energy() float64 {
	return r3.Norm(p.Momentum)
}

// Direction returns the unit propagation direction, or the zero vector for a zero momentum.
func (p PrimaryParticle) Direction() r3.Vec {
	if p.Momentum == (r3.Vec{}) {
		return r3.Vec{}
	}
	return r3.Unit(p.Momentum)
}

// Vertex is a space-time point carrying the primaries emitted from it.
type Vertex struct {
	Position  r3.Vec  // mm
	Time      float64 // ns; primary generators emit at t=0
	Primaries []PrimaryParticle
}

// NewVertex creates an empty vertex with room for n primaries.
func NewVertex(position r3.Vec, time float64, n int) *Vertex {
	return &Vertex{
		Position:  position,
		Time:      time,
		Primaries: make([]PrimaryParticle, 0, n),
	}
}

// AddPrimary attaches a primary particle to the vertex.
func (v *Vertex) AddPrimary(p PrimaryParticle) {
	v.Primaries = append(v.Primaries, p)
}

// NumPrimaries returns the number of attached primaries.
func (v *Vertex) NumPrimaries() int {
	return len(v.Primaries)
}

// EventSink receives the vertices produced for one event.
type EventSink interface {
	AddPrimaryVertex(v *Vertex)
}

// Event is one simulated trigger: an ordered list of primary vertices.
type Event struct {
	ID       int
	Vertices []*Vertex
}

// NewEvent creates an empty event.
func NewEvent(id int) *Event {
	return &Event{ID: id}
}

// AddPrimaryVertex appends v to the event.
func (e *Event) AddPrimaryVertex(v *Vertex) {
	e.Vertices = append(e.Vertices, v)
}

// NumPrimaries returns the number of primaries across all vertices.
func (e *Event) NumPrimaries() int {
	n := 0
	for _, v := range e.Vertices {
		n += v.NumPrimaries()
	}
	return n
}

// String returns a human-readable summary of the event.
func (e *Event) String() string {
	return fmt.Sprintf("Event: (ID: %d, Vertices: %d, Primaries: %d)", e.ID, len(e.Vertices), e.NumPrimaries())
}
