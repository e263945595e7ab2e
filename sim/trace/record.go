// Package trace provides per-station event trace recording.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "fmt"

// EventKind tags a trace line.
type EventKind string

const (
	KindArrival      EventKind = "a" // item entered the station
	KindServiceStart EventKind = "s" // item left the queue and entered service
	KindDeparture    EventKind = "d" // item finished service
)

// EventRecord captures one station event.
// Status is the server state (0 idle, 1 busy) and QueueLen the queue
// length at the moment of recording.
type EventRecord struct {
	StationID int
	Kind      EventKind
	Time      float64
	ItemID    int
	Status    int
	QueueLen  int
}

// Line renders the record as "<kind>\t<time>\t<item>\t<status>\t<queue>".
func (r EventRecord) Line() string {
	return fmt.Sprintf("%s\t%.6f\t%d\t%d\t%d", r.Kind, r.Time, r.ItemID, r.Status, r.QueueLen)
}
