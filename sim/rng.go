package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible generation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical primaries.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemGenerator is the RNG subsystem for single-stream generation.
	// Uses master seed directly, so `--seed N` reproduces rand.NewSource(N).
	SubsystemGenerator = "generator"

	// SubsystemGeometry is the RNG subsystem for geometry self-checks.
	SubsystemGeometry = "geometry"
)

// SubsystemEvent returns the subsystem name for event N.
// Used by the batch runner to give every event its own stream.
func SubsystemEvent(id int) string {
	return fmt.Sprintf("event_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemGenerator: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
// The returned *rand.Rand streams may each be handed to one other goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := p.Derive(name)
	p.subsystems[name] = rng
	return rng
}

// Derive returns a fresh RNG positioned at the start of the named subsystem's
// sequence. Unlike ForSubsystem it is not cached, so per-event streams do not
// accumulate over long runs.
func (p *PartitionedRNG) Derive(name string) *rand.Rand {
	return rand.New(rand.NewSource(p.DeriveSeed(name)))
}

// DeriveSeed returns the seed used for the named subsystem.
func (p *PartitionedRNG) DeriveSeed(name string) int64 {
	if name == SubsystemGenerator {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
