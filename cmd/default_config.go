package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tandem-sim/tandem-sim/sim"
	"github.com/tandem-sim/tandem-sim/sim/trace"
)

// StationEntry describes one station in a network YAML file.
// A missing max_arrivals takes the reference cap; an explicit 0 disables
// self-generated arrivals.
type StationEntry struct {
	ArrivalRate float64 `yaml:"arrival_rate"`
	ServiceRate float64 `yaml:"service_rate"`
	MaxArrivals *int    `yaml:"max_arrivals"`
}

// Config represents the full network YAML structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed     *int64        `yaml:"seed"`
	Horizon  float64       `yaml:"horizon"`
	RNG      string        `yaml:"rng"`
	Trace    string        `yaml:"trace"`
	Stations []StationEntry `yaml:"stations"`
}

// loadConfig parses a network YAML file with strict field checking:
// typos must cause errors.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if !trace.IsValidTraceLevel(cfg.Trace) {
		return cfg, fmt.Errorf("config %s: invalid trace level %q", path, cfg.Trace)
	}
	return cfg, nil
}

// NetworkConfig converts the file layout into the simulator's configuration.
// defaultSeed applies when the file sets no seed.
func (c Config) NetworkConfig(defaultSeed int64) sim.NetworkConfig {
	nc := sim.NetworkConfig{
		Seed:     defaultSeed,
		Horizon:  c.Horizon,
		RNG:      c.RNG,
		Trace:    c.Trace == string(trace.TraceLevelEvents),
		Stations: make([]sim.StationConfig, len(c.Stations)),
	}
	if c.Seed != nil {
		nc.Seed = *c.Seed
	}
	if nc.RNG == "" {
		nc.RNG = sim.RNGPartitioned
	}
	for i, s := range c.Stations {
		sc := sim.NewStationConfig(s.ArrivalRate, s.ServiceRate)
		if s.MaxArrivals != nil {
			sc.MaxArrivals = *s.MaxArrivals
		}
		nc.Stations[i] = sc
	}
	return nc
}
