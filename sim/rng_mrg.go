package sim

import "github.com/iti/rngstream"

// mrgSeedRange bounds the derived package seed so that all six seed
// components stay below the smaller MRG32k3a modulus (4294944443).
const mrgSeedRange = 4294944443 - 7

// MRGStreams hands out MRG32k3a streams (L'Ecuyer's RngStream), one per
// stream name. rngstream carves each new stream from package-level state,
// so streams depend on the master seed and on the order of first requests.
// Not safe for concurrent use; build one network at a time with this backend.
type MRGStreams struct {
	streams map[string]*mrgSource
}

// NewMRGStreams resets the rngstream package seed from key and returns an
// empty stream factory.
func NewMRGStreams(key SimulationKey) *MRGStreams {
	rngstream.SetRngStreamMasterSeed(mrgPackageSeed(key))
	return &MRGStreams{streams: make(map[string]*mrgSource)}
}

// mrgPackageSeed maps any master seed into [1, mrgSeedRange]; an all-zero
// MRG state would never leave zero.
func mrgPackageSeed(key SimulationKey) uint64 {
	return uint64(key)%mrgSeedRange + 1
}

// Stream implements StreamFactory. The same name returns the same stream.
func (m *MRGStreams) Stream(name string) UniformSource {
	if src, ok := m.streams[name]; ok {
		return src
	}
	src := &mrgSource{rs: rngstream.New(name)}
	m.streams[name] = src
	return src
}

type mrgSource struct {
	rs *rngstream.RngStream
}

// Float64 returns a variate in (0,1).
func (s *mrgSource) Float64() float64 {
	return s.rs.RandU01()
}
