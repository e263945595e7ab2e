package sim

import "fmt"

// EventKind is the event vocabulary of the kernel.
type EventKind int

const (
	ArrivalEvent EventKind = iota
	DepartureEvent
)

func (k EventKind) String() string {
	switch k {
	case ArrivalEvent:
		return "arrival"
	case DepartureEvent:
		return "departure"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a scheduled (time, kind, station) tuple.
// Events are values; "reactivating" a station pushes a new Event.
type Event struct {
	time    float64 // simulation time at which the event fires
	seq     uint64  // insertion order, breaks ties among equal times
	Kind    EventKind
	Station int // index of the owning station in the chain
}

// Timestamp returns the scheduled time of the event.
func (e Event) Timestamp() float64 {
	return e.time
}

// Seq returns the insertion sequence number assigned by the scheduler.
func (e Event) Seq() uint64 {
	return e.seq
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%.6f(station=%d, seq=%d)", e.Kind, e.time, e.Station, e.seq)
}
