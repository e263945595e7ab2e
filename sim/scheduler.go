// sim/scheduler.go
package sim

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// EventQueue implements heap.Interface and orders events by timestamp,
// then by insertion sequence.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []Event

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Kernel is the handle station handlers use to read the clock, schedule
// their own events and pass finished items down the chain.
type Kernel interface {
	Now() float64
	Activate(station int, kind EventKind, delay float64) bool
	Handoff(station int, item *Item)
}

// EventObserver is notified of every dispatched event, including the
// immediate arrivals produced by handoffs.
type EventObserver interface {
	ObserveEvent(ev Event)
}

// EventObserverFunc adapts a function to EventObserver.
type EventObserverFunc func(ev Event)

func (f EventObserverFunc) ObserveEvent(ev Event) { f(ev) }

// Scheduler owns the pending-event set and the virtual clock.
// Thread-safety: NOT thread-safe. All handlers run on the goroutine calling Run.
type Scheduler struct {
	clock      float64
	horizon    float64
	events     EventQueue
	nextSeq    uint64
	stations   []*Station
	observers  []EventObserver
	dispatched int
	truncated  bool
}

// NewScheduler creates a Scheduler. A horizon <= 0 or NaN means no horizon.
func NewScheduler(horizon float64) *Scheduler {
	if horizon <= 0 || math.IsNaN(horizon) {
		horizon = math.Inf(1)
	}
	return &Scheduler{
		horizon: horizon,
		events:  make(EventQueue, 0),
	}
}

// Register attaches a station to the scheduler. Stations must be
// registered in chain order; st.ID must equal its index.
func (s *Scheduler) Register(st *Station) {
	if st == nil {
		panic("Register: station must not be nil")
	}
	if st.ID != len(s.stations) {
		panic(fmt.Sprintf("Register: station ID %d registered at index %d", st.ID, len(s.stations)))
	}
	s.stations = append(s.stations, st)
}

// AddObserver registers an observer for dispatched events.
func (s *Scheduler) AddObserver(o EventObserver) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// Now returns the current simulation time.
func (s *Scheduler) Now() float64 {
	return s.clock
}

// Horizon returns the time horizon (+Inf when unbounded).
func (s *Scheduler) Horizon() float64 {
	return s.horizon
}

// Pending returns the number of scheduled, not yet dispatched events.
func (s *Scheduler) Pending() int {
	return len(s.events)
}

// Dispatched returns the number of events dispatched so far.
func (s *Scheduler) Dispatched() int {
	return s.dispatched
}

// Truncated reports whether Run stopped at the horizon with events still pending.
func (s *Scheduler) Truncated() bool {
	return s.truncated
}

// Activate schedules an event of the given kind for station at Now()+delay.
// A non-finite or negative delay is logged and ignored (returns false).
// Scheduling a second pending event of the same kind for one station is a
// handler bug and panics.
func (s *Scheduler) Activate(station int, kind EventKind, delay float64) bool {
	st := s.station(station)
	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay < 0 {
		logrus.Warnf("[t=%.6f] station %d: refusing to schedule %s with delay %v", s.clock, station, kind, delay)
		return false
	}
	st.markPending(kind)
	heap.Push(&s.events, Event{
		time:    s.clock + delay,
		seq:     s.nextSeq,
		Kind:    kind,
		Station: station,
	})
	s.nextSeq++
	return true
}

// Handoff delivers item to station as an arrival at the current time.
// The arrival is dispatched immediately; it never enters the pending set.
func (s *Scheduler) Handoff(station int, item *Item) {
	if item == nil {
		panic("Handoff: item must not be nil")
	}
	ev := Event{time: s.clock, seq: s.nextSeq, Kind: ArrivalEvent, Station: station}
	s.nextSeq++
	s.dispatch(ev, item)
}

// Run dispatches events in (time, insertion order) until the pending set
// is empty, the next event lies beyond the horizon, or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for len(s.events) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.events[0].time > s.horizon {
			s.clock = s.horizon
			s.truncated = true
			logrus.Infof("[t=%.6f] horizon reached with %d pending events", s.clock, len(s.events))
			return nil
		}
		ev := heap.Pop(&s.events).(Event)
		s.station(ev.Station).clearPending(ev.Kind)
		// advance the clock
		s.clock = ev.time
		s.dispatch(ev, nil)
	}
	logrus.Infof("[t=%.6f] simulation ended after %d events", s.clock, s.dispatched)
	return nil
}

// dispatch brings the owning station's accumulators up to date, then runs its handler.
func (s *Scheduler) dispatch(ev Event, item *Item) {
	st := s.station(ev.Station)
	logrus.Debugf("[t=%.6f] executing %s", s.clock, ev)
	s.dispatched++
	for _, o := range s.observers {
		o.ObserveEvent(ev)
	}
	st.UpdateStats(s.clock)
	switch ev.Kind {
	case ArrivalEvent:
		st.HandleArrival(s, item)
	case DepartureEvent:
		st.HandleDeparture(s)
	default:
		panic(fmt.Sprintf("dispatch: unknown event kind %d", int(ev.Kind)))
	}
}

func (s *Scheduler) station(idx int) *Station {
	if idx < 0 || idx >= len(s.stations) {
		panic(fmt.Sprintf("scheduler: no station with index %d", idx))
	}
	return s.stations[idx]
}
