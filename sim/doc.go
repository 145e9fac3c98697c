// Package sim provides the shared types of the scint-sim primary generator.
//
// # Reading Guide
//
// Start with these files:
//   - event.go: Event, Vertex and PrimaryParticle, the host event representation
//   - collaborators.go: the geometry and spectrum capabilities injected into a generator
//   - rng.go: partitioned, seed-derived random streams
//
// # Architecture
//
// The sim package defines types and interfaces; implementations live in
// sub-packages:
//   - sim/spectrum/: cumulative distributions and energy samplers
//   - sim/direction/: isotropic and windowed direction sampling
//   - sim/geometry/: vertex region providers built from simple bodies
//   - sim/generator/: the per-event primary generator and batch runner
//   - sim/trace/: per-event records and run summaries
//   - sim/store/: SQLite persistence of generated events
//
// Units: energies are in eV, lengths in mm, times in ns.
package sim
