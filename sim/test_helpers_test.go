package sim

import "math"

// constSource always returns the same uniform value.
type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// constStreams hands out the same constSource for every stream name.
type constStreams float64

func (c constStreams) Stream(string) UniformSource { return constSource(c) }

// uniformForDelay returns the source value that makes Exponential.Sample
// yield delay d at the given rate.
func uniformForDelay(d, rate float64) float64 {
	return 1 - math.Exp(-d*rate)
}

type activation struct {
	station int
	kind    EventKind
	delay   float64
}

type handoff struct {
	station int
	item    *Item
}

// fakeKernel records what a station asks of the scheduler without running anything.
type fakeKernel struct {
	now         float64
	activations []activation
	handoffs    []handoff
}

func (k *fakeKernel) Now() float64 { return k.now }

func (k *fakeKernel) Activate(station int, kind EventKind, delay float64) bool {
	k.activations = append(k.activations, activation{station, kind, delay})
	return true
}

func (k *fakeKernel) Handoff(station int, item *Item) {
	k.handoffs = append(k.handoffs, handoff{station, item})
}

func (k *fakeKernel) count(kind EventKind) int {
	n := 0
	for _, a := range k.activations {
		if a.kind == kind {
			n++
		}
	}
	return n
}

// idleStation builds a station whose rates are zero, so it never schedules
// anything on its own.
func idleStation(id int) *Station {
	return NewStation(id, StationConfig{}, constStreams(0.5))
}
