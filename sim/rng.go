package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of a run. Equal keys and equal network
// configurations give identical traces and reports.
type SimulationKey int64

// NewSimulationKey wraps seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemArrival returns the stream name for station id's interarrival times.
func SubsystemArrival(id int) string {
	return fmt.Sprintf("station_%d/arrival", id)
}

// SubsystemService returns the stream name for station id's service times.
func SubsystemService(id int) string {
	return fmt.Sprintf("station_%d/service", id)
}

// UniformSource yields uniform variates in [0,1).
// *rand.Rand satisfies it.
type UniformSource interface {
	Float64() float64
}

// StreamFactory hands out one independent UniformSource per stream name.
type StreamFactory interface {
	Stream(name string) UniformSource
}

// PartitionedRNG derives one math/rand generator per stream name, seeded
// with masterSeed XOR fnv1a64(name). Adding a station never shifts the
// draws of another. Not safe for concurrent use.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG returns an empty stream set for key.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the generator for name, creating it on first use.
// Repeated calls with one name share a generator.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	rng, ok := p.streams[name]
	if !ok {
		rng = rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
		p.streams[name] = rng
	}
	return rng
}

// Stream implements StreamFactory.
func (p *PartitionedRNG) Stream(name string) UniformSource {
	return p.ForSubsystem(name)
}

func fnv1a64(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
