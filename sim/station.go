package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tandem-sim/tandem-sim/sim/trace"
)

// NoStation marks a missing predecessor or successor link.
const NoStation = -1

// DefaultMaxArrivals is the reference per-station arrival cap.
const DefaultMaxArrivals = 100

// StationState is the server state of a station.
type StationState int

const (
	Idle StationState = iota
	Busy
)

func (s StationState) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Station is a single FIFO queue in front of a single server.
//
// State machine:
//   - Idle --arrival--> Busy (item goes straight into service)
//   - Busy --arrival--> Busy (item is enqueued)
//   - Busy --departure, queue non-empty--> Busy (head of queue enters service)
//   - Busy --departure, queue empty--> Idle
type Station struct {
	ID   int
	Prev int // predecessor index or NoStation; NoStation makes this a source
	Next int // successor index or NoStation; NoStation means items exit here

	ArrivalRate float64
	ServiceRate float64
	// MaxArrivals caps the arrivals a source station generates itself.
	// Negative means unlimited. Items handed off from a predecessor are not counted.
	MaxArrivals int

	State     StationState
	InService *Item // valid only when Busy
	WaitQ     *WaitQueue
	Stats     *StationStats

	generated int // self-generated arrivals
	received  int // all arrivals, generated or handed off

	interarrival *Exponential
	service      *Exponential

	pendingArrival   bool
	pendingDeparture bool
	warned           map[EventKind]bool

	log *trace.StationLog // nil when tracing is disabled
}

// NewStation creates a station with its own interarrival and service streams.
func NewStation(id int, cfg StationConfig, streams StreamFactory) *Station {
	return &Station{
		ID:           id,
		Prev:         NoStation,
		Next:         NoStation,
		ArrivalRate:  cfg.ArrivalRate,
		ServiceRate:  cfg.ServiceRate,
		MaxArrivals:  cfg.MaxArrivals,
		WaitQ:        &WaitQueue{},
		Stats:        &StationStats{},
		interarrival: NewExponential(cfg.ArrivalRate, streams.Stream(SubsystemArrival(id))),
		service:      NewExponential(cfg.ServiceRate, streams.Stream(SubsystemService(id))),
		warned:       make(map[EventKind]bool),
	}
}

// IsSource reports whether the station generates its own arrivals.
func (st *Station) IsSource() bool {
	return st.Prev == NoStation
}

// Resident returns the number of items currently at the station.
func (st *Station) Resident() int {
	n := st.WaitQ.Len()
	if st.State == Busy {
		n++
	}
	return n
}

// Generated returns the number of arrivals the station generated itself.
func (st *Station) Generated() int {
	return st.generated
}

// Received returns the number of arrivals handled by the station.
func (st *Station) Received() int {
	return st.received
}

// Initialize resets state and accumulators and, on a source station,
// schedules the first arrival.
func (st *Station) Initialize(k Kernel) {
	st.State = Idle
	st.InService = nil
	st.WaitQ = &WaitQueue{}
	st.Stats = &StationStats{LastEventTime: k.Now()}
	st.generated = 0
	st.received = 0

	if st.IsSource() && st.MaxArrivals != 0 {
		st.schedule(k, ArrivalEvent, st.interarrival)
	}
}

// UpdateStats accumulates the time-weighted areas up to now.
func (st *Station) UpdateStats(now float64) {
	st.Stats.Update(now, st.WaitQ.Len(), st.State == Busy)
}

// HandleArrival processes an arrival. A nil item means a self-generated
// arrival on a source station; otherwise the item was handed off by the
// predecessor.
func (st *Station) HandleArrival(k Kernel, item *Item) {
	now := k.Now()
	if item == nil {
		st.generated++
		item = &Item{ID: st.generated}
		if st.MaxArrivals < 0 || st.generated < st.MaxArrivals {
			st.schedule(k, ArrivalEvent, st.interarrival)
		}
	}
	st.received++
	item.ArrivalTime = now
	st.record(trace.KindArrival, now, item.ID, st.State)

	if st.State == Idle {
		st.State = Busy
		st.InService = item
		st.Stats.recordQueueDelay(0)
		st.schedule(k, DepartureEvent, st.service)
		return
	}
	st.WaitQ.Enqueue(item)
}

// HandleDeparture completes the item in service, starts the next one if
// any, and hands the completed item to the successor.
func (st *Station) HandleDeparture(k Kernel) {
	now := k.Now()
	done := st.InService
	if st.State != Busy || done == nil {
		panic(fmt.Sprintf("HandleDeparture: station %d has no item in service", st.ID))
	}
	next := st.WaitQ.Peek()
	after := Idle
	if next != nil {
		after = Busy
	}
	st.record(trace.KindDeparture, now, done.ID, after)
	st.Stats.recordDeparture(now - done.ArrivalTime)

	if next != nil {
		st.WaitQ.Dequeue()
		st.InService = next
		st.Stats.recordQueueDelay(now - next.ArrivalTime)
		st.record(trace.KindServiceStart, now, next.ID, Busy)
		st.schedule(k, DepartureEvent, st.service)
	} else {
		st.State = Idle
		st.InService = nil
	}

	if st.Next != NoStation {
		k.Handoff(st.Next, done)
	}
}

// schedule samples v and activates an event of kind. A non-finite sample
// is reported once per event kind and the activation is skipped.
func (st *Station) schedule(k Kernel, kind EventKind, v *Exponential) {
	delay, err := v.Sample()
	if err != nil || math.IsInf(delay, 0) {
		if !st.warned[kind] {
			st.warned[kind] = true
			logrus.Warnf("station %d: no further %s events: %v", st.ID, kind, err)
		}
		return
	}
	k.Activate(st.ID, kind, delay)
}

func (st *Station) markPending(kind EventKind) {
	pending := &st.pendingArrival
	if kind == DepartureEvent {
		pending = &st.pendingDeparture
	}
	if *pending {
		panic(fmt.Sprintf("station %d: %s already pending", st.ID, kind))
	}
	*pending = true
}

func (st *Station) clearPending(kind EventKind) {
	if kind == DepartureEvent {
		st.pendingDeparture = false
	} else {
		st.pendingArrival = false
	}
}

func (st *Station) record(kind trace.EventKind, now float64, itemID int, status StationState) {
	if st.log == nil {
		return
	}
	st.log.Record(trace.EventRecord{
		StationID: st.ID,
		Kind:      kind,
		Time:      now,
		ItemID:    itemID,
		Status:    int(status),
		QueueLen:  st.WaitQ.Len(),
	})
}
