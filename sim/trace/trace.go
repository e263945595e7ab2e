package trace

import (
	"bufio"
	"fmt"
	"io"
)

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every arrival, service start and departure.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// StationLog collects the records of one station in event order.
type StationLog struct {
	StationID int
	Records   []EventRecord
}

// Record appends a record.
func (l *StationLog) Record(r EventRecord) {
	l.Records = append(l.Records, r)
}

// WriteTo writes the trace file layout: a two-line header, a blank line,
// then one line per record.
func (l *StationLog) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	write := func(s string) error {
		n, err := bw.WriteString(s)
		total += int64(n)
		return err
	}
	if err := write("Trace file for the simulation\nFormat: <event> <time> <item_id> <server_status> <queue_size>\n\n"); err != nil {
		return total, err
	}
	for _, r := range l.Records {
		if err := write(r.Line() + "\n"); err != nil {
			return total, fmt.Errorf("station %d trace: %w", l.StationID, err)
		}
	}
	return total, bw.Flush()
}

// SimulationTrace collects event records for every station of a run.
type SimulationTrace struct {
	Config   TraceConfig
	Stations []*StationLog
}

// NewSimulationTrace creates a SimulationTrace ready for recording n stations.
func NewSimulationTrace(config TraceConfig, n int) *SimulationTrace {
	st := &SimulationTrace{
		Config:   config,
		Stations: make([]*StationLog, n),
	}
	for i := range st.Stations {
		st.Stations[i] = &StationLog{StationID: i, Records: make([]EventRecord, 0)}
	}
	return st
}

// Station returns the log of station id.
func (st *SimulationTrace) Station(id int) *StationLog {
	return st.Stations[id]
}
