// Package sim provides the discrete-event kernel for simulating a tandem
// network of single-server FIFO stations.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: the Event value (time, insertion sequence, kind, station)
//   - scheduler.go: the pending-event heap, the virtual clock and the dispatch loop
//   - station.go: the Idle/Busy state machine with its arrival and departure handlers
//   - statistics.go: time-weighted areas and per-item delay accumulators
//   - network.go: chain construction, priming and end-of-run reporting
//
// # Architecture
//
// Stations never hold references to each other. The chain is an
// index-addressed slice and each Station stores the indices of its
// predecessor and successor (NoStation at the ends). Handlers receive a
// Kernel handle for the current time, for scheduling their own events and
// for handing a finished item to the next station.
//
// Randomness is partitioned: every station owns one stream for
// interarrival times and one for service times, each derived from the
// master SimulationKey (see rng.go).
//
// Sub-packages:
//   - sim/trace/: per-station event trace records
//   - sim/promexport/: Prometheus gauges for the final station reports
package sim
