package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoStations is returned when a network is configured without stations.
var ErrNoStations = errors.New("network needs at least one station")

// RNG backend names accepted by NetworkConfig.RNG.
const (
	RNGPartitioned = "partitioned" // math/rand streams derived from the seed (default)
	RNGMRG32k3a    = "mrg32k3a"    // L'Ecuyer MRG32k3a streams
)

// StationConfig groups the parameters of one station.
type StationConfig struct {
	ArrivalRate float64 // mean arrivals per unit time; used only on the source station
	ServiceRate float64 // mean service completions per unit time
	MaxArrivals int     // cap on self-generated arrivals (negative = unlimited, needs a horizon)
}

// NetworkConfig describes a chain of stations. Stations are linked in slice order.
type NetworkConfig struct {
	Seed     int64
	Horizon  float64 // simulation time limit; <= 0 means none
	RNG      string  // "partitioned" (default) or "mrg32k3a"
	Trace    bool    // collect per-station event traces
	Stations []StationConfig
}

// NewStationConfig returns a station configuration with the reference arrival cap.
func NewStationConfig(arrivalRate, serviceRate float64) StationConfig {
	return StationConfig{ArrivalRate: arrivalRate, ServiceRate: serviceRate, MaxArrivals: DefaultMaxArrivals}
}

// UniformNetworkConfig builds n stations sharing one arrival rate and one service rate.
func UniformNetworkConfig(n int, arrivalRate, serviceRate float64, seed int64) NetworkConfig {
	stations := make([]StationConfig, n)
	for i := range stations {
		stations[i] = NewStationConfig(arrivalRate, serviceRate)
	}
	return NetworkConfig{Seed: seed, RNG: RNGPartitioned, Stations: stations}
}

// Validate checks the configuration for errors that would stop the whole run.
// Non-positive rates are not errors: the affected station stops generating
// that event class and the condition is logged when first hit.
func (c NetworkConfig) Validate() error {
	if len(c.Stations) == 0 {
		return ErrNoStations
	}
	switch c.RNG {
	case "", RNGPartitioned, RNGMRG32k3a:
	default:
		return fmt.Errorf("unknown rng backend %q", c.RNG)
	}
	if math.IsNaN(c.Horizon) {
		return errors.New("horizon must be a number")
	}
	unbounded := c.Horizon <= 0 || math.IsInf(c.Horizon, 1)
	if unbounded && c.Stations[0].MaxArrivals < 0 && c.Stations[0].ArrivalRate > 0 {
		return errors.New("station 0: unlimited arrivals require a finite horizon")
	}
	return nil
}

func (c NetworkConfig) streams() StreamFactory {
	if c.RNG == RNGMRG32k3a {
		return NewMRGStreams(NewSimulationKey(c.Seed))
	}
	return NewPartitionedRNG(NewSimulationKey(c.Seed))
}
