package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tandem-sim/tandem-sim/sim/trace"
)

// Network is an ordered chain of stations driven by one Scheduler.
// Station i has predecessor i-1 and successor i+1; only station 0
// generates its own arrivals and items leave the system after the last one.
type Network struct {
	config    NetworkConfig
	scheduler *Scheduler
	stations  []*Station
	trace     *trace.SimulationTrace
	hasRun    bool
}

// NewNetwork builds and links the chain described by cfg.
func NewNetwork(cfg NetworkConfig) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}
	streams := cfg.streams()
	n := &Network{
		config:    cfg,
		scheduler: NewScheduler(cfg.Horizon),
		stations:  make([]*Station, len(cfg.Stations)),
	}
	if cfg.Trace {
		n.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents}, len(cfg.Stations))
	}
	for i, sc := range cfg.Stations {
		st := NewStation(i, sc, streams)
		if i > 0 {
			st.Prev = i - 1
		}
		if i < len(cfg.Stations)-1 {
			st.Next = i + 1
		}
		if n.trace != nil {
			st.log = n.trace.Station(i)
		}
		n.stations[i] = st
		n.scheduler.Register(st)
	}
	return n, nil
}

// Stations returns the chain in order. Callers must not modify the slice.
func (n *Network) Stations() []*Station {
	return n.stations
}

// Scheduler returns the scheduler driving the network.
func (n *Network) Scheduler() *Scheduler {
	return n.scheduler
}

// Trace returns the collected event trace, or nil when tracing is disabled.
func (n *Network) Trace() *trace.SimulationTrace {
	return n.trace
}

// Config returns the configuration the network was built from.
func (n *Network) Config() NetworkConfig {
	return n.config
}

// Run initializes every station, dispatches events until none remain (or
// the horizon is reached) and closes the accumulators.
// Panics if called more than once.
func (n *Network) Run(ctx context.Context) error {
	if n.hasRun {
		panic("Network.Run() called more than once")
	}
	n.hasRun = true

	logrus.Infof("starting simulation: %d stations, seed=%d, rng=%s", len(n.stations), n.config.Seed, n.config.RNG)
	for _, st := range n.stations {
		st.Initialize(n.scheduler)
	}
	if err := n.scheduler.Run(ctx); err != nil {
		return fmt.Errorf("simulation interrupted at t=%.6f: %w", n.scheduler.Now(), err)
	}
	if n.scheduler.Truncated() {
		// every station observed the system up to the horizon
		for _, st := range n.stations {
			st.UpdateStats(n.scheduler.Now())
		}
	}
	return nil
}

// Reports computes the derived metrics of every station.
func (n *Network) Reports() []StationReport {
	reports := make([]StationReport, len(n.stations))
	for i, st := range n.stations {
		reports[i] = NewStationReport(st)
	}
	return reports
}
