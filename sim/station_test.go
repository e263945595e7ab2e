package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandem-sim/tandem-sim/sim/trace"
)

// sourceStation returns a source station whose every sample equals 1/rate.
func sourceStation(maxArrivals int) *Station {
	u := uniformForDelay(1.0/3.0, 3.0)
	return NewStation(0, StationConfig{ArrivalRate: 3, ServiceRate: 3, MaxArrivals: maxArrivals}, constStreams(u))
}

func TestStation_Initialize_PrimesSourceOnly(t *testing.T) {
	// GIVEN a source and a downstream station
	src := sourceStation(10)
	down := sourceStation(10)
	down.ID, down.Prev = 1, 0

	// WHEN both are initialized
	k := &fakeKernel{}
	src.Initialize(k)
	down.Initialize(k)

	// THEN only the source scheduled an arrival
	require.Len(t, k.activations, 1)
	assert.Equal(t, activation{0, ArrivalEvent, 1.0 / 3.0}, roundActivation(k.activations[0]))
}

func TestStation_Initialize_ZeroCapSchedulesNothing(t *testing.T) {
	k := &fakeKernel{}
	sourceStation(0).Initialize(k)
	assert.Empty(t, k.activations)
}

func TestStation_HandleArrival_IdleGoesBusy(t *testing.T) {
	// GIVEN an idle source station at t=2
	st := sourceStation(10)
	k := &fakeKernel{now: 2}
	st.Initialize(k)
	k.activations = nil

	// WHEN a self-generated arrival fires
	st.HandleArrival(k, nil)

	// THEN the new item is in service with zero queueing delay, and both
	// the next arrival and its departure are scheduled
	assert.Equal(t, Busy, st.State)
	require.NotNil(t, st.InService)
	assert.Equal(t, 1, st.InService.ID)
	assert.Equal(t, 2.0, st.InService.ArrivalTime)
	assert.Equal(t, []float64{0}, st.Stats.QueueDelays)
	assert.Equal(t, 1, k.count(ArrivalEvent))
	assert.Equal(t, 1, k.count(DepartureEvent))
	assert.Equal(t, 1, st.Resident())
}

func TestStation_HandleArrival_BusyEnqueues(t *testing.T) {
	st := sourceStation(10)
	k := &fakeKernel{}
	st.Initialize(k)
	st.HandleArrival(k, nil)
	k.activations = nil

	k.now = 0.1
	st.HandleArrival(k, nil)

	assert.Equal(t, 1, st.WaitQ.Len())
	assert.Equal(t, 2, st.Resident())
	assert.Equal(t, 0, k.count(DepartureEvent), "no service sampled for a queued item")
	assert.Equal(t, 1, k.count(ArrivalEvent))
}

func TestStation_HandleArrival_CapStopsSelfScheduling(t *testing.T) {
	// GIVEN a cap of 2
	st := sourceStation(2)
	k := &fakeKernel{}
	st.Initialize(k)
	k.activations = nil

	// WHEN two arrivals fire
	st.HandleArrival(k, nil)
	st.HandleArrival(k, nil)

	// THEN only the first one scheduled a successor arrival
	assert.Equal(t, 1, k.count(ArrivalEvent))
	assert.Equal(t, 2, st.Generated())
}

func TestStation_HandleArrival_HandedOffItemKeepsID(t *testing.T) {
	st := sourceStation(10)
	st.Prev = 0
	st.ID = 1
	k := &fakeKernel{now: 4}
	st.Initialize(k)

	it := &Item{ID: 42, ArrivalTime: 1}
	st.HandleArrival(k, it)

	assert.Same(t, it, st.InService)
	assert.Equal(t, 4.0, it.ArrivalTime, "entry time resets at the new station")
	assert.Equal(t, 0, k.count(ArrivalEvent), "handoffs never self-schedule")
	assert.Equal(t, 0, st.Generated())
	assert.Equal(t, 1, st.Received())
}

func TestStation_HandleDeparture_StartsNextAndHandsOff(t *testing.T) {
	// GIVEN item 1 in service and item 2 waiting since t=0.5
	st := sourceStation(10)
	st.Next = 1
	k := &fakeKernel{}
	st.Initialize(k)
	st.HandleArrival(k, nil)
	k.now = 0.5
	st.HandleArrival(k, nil)
	first := st.InService
	k.activations = nil

	// WHEN the departure fires at t=2
	k.now = 2
	st.HandleDeparture(k)

	// THEN item 2 is in service with a 1.5 queueing delay, item 1 is handed on
	assert.Equal(t, Busy, st.State)
	assert.Equal(t, 2, st.InService.ID)
	assert.Equal(t, []float64{0, 1.5}, st.Stats.QueueDelays)
	assert.Equal(t, []float64{2}, st.Stats.SystemDelays)
	assert.Equal(t, 1, st.Stats.Served)
	assert.Equal(t, 1, k.count(DepartureEvent))
	require.Len(t, k.handoffs, 1)
	assert.Equal(t, handoff{1, first}, k.handoffs[0])
}

func TestStation_HandleDeparture_EmptyQueueGoesIdle(t *testing.T) {
	st := sourceStation(10)
	k := &fakeKernel{}
	st.Initialize(k)
	st.HandleArrival(k, nil)
	k.activations = nil

	k.now = 1
	st.HandleDeparture(k)

	assert.Equal(t, Idle, st.State)
	assert.Nil(t, st.InService)
	assert.Equal(t, 0, st.Resident())
	assert.Empty(t, k.activations)
	assert.Empty(t, k.handoffs, "last station keeps nothing to hand off")
}

func TestStation_HandleDeparture_IdlePanics(t *testing.T) {
	st := sourceStation(10)
	st.Initialize(&fakeKernel{})
	assert.Panics(t, func() { st.HandleDeparture(&fakeKernel{}) })
}

func TestStation_NonPositiveServiceRate_NoDeparture(t *testing.T) {
	// GIVEN a station that cannot sample service times
	st := NewStation(0, StationConfig{ArrivalRate: 1, ServiceRate: 0, MaxArrivals: 5}, constStreams(0.5))
	k := &fakeKernel{}
	st.Initialize(k)

	// WHEN arrivals happen
	st.HandleArrival(k, nil)
	st.HandleArrival(k, nil)

	// THEN departures are never scheduled; arrivals carry on
	assert.Equal(t, 0, k.count(DepartureEvent))
	assert.Equal(t, 3, k.count(ArrivalEvent))
	assert.Equal(t, 1, st.WaitQ.Len())
}

func TestStation_UpdateStats_TimeWeighted(t *testing.T) {
	// GIVEN a busy station with one waiting item since t=0
	st := sourceStation(10)
	k := &fakeKernel{}
	st.Initialize(k)
	st.HandleArrival(k, nil)
	st.HandleArrival(k, nil)

	// WHEN 2.5 time units elapse
	st.UpdateStats(2.5)

	// THEN queue and server areas grew by 2.5 each
	assert.InDelta(t, 2.5, st.Stats.AreaQueue, 1e-12)
	assert.InDelta(t, 2.5, st.Stats.AreaServer, 1e-12)
	assert.Equal(t, st.Stats.AreaQueue+st.Stats.AreaServer, st.Stats.AreaSystem())
	assert.Equal(t, 2.5, st.Stats.LastEventTime)
}

// roundActivation trims float noise from sampled delays for comparisons.
func roundActivation(a activation) activation {
	const eps = 1e-9
	if d := a.delay - 1.0/3.0; d < eps && d > -eps {
		a.delay = 1.0 / 3.0
	}
	return a
}

func TestStation_HandleDeparture_TracesStatusAfterDeparture(t *testing.T) {
	// GIVEN a traced station with item 1 in service and item 2 waiting
	st := sourceStation(10)
	st.log = &trace.StationLog{StationID: 0}
	k := &fakeKernel{}
	st.Initialize(k)
	st.HandleArrival(k, nil)
	k.now = 0.5
	st.HandleArrival(k, nil)

	// WHEN both departures fire
	k.now = 1
	st.HandleDeparture(k)
	k.now = 2
	st.HandleDeparture(k)

	// THEN the first departure leaves the server busy with item 2 and the
	// second leaves it idle
	recs := st.log.Records
	require.Len(t, recs, 5)
	assert.Equal(t, trace.EventRecord{StationID: 0, Kind: trace.KindDeparture, Time: 1, ItemID: 1, Status: int(Busy), QueueLen: 1}, recs[2])
	assert.Equal(t, trace.EventRecord{StationID: 0, Kind: trace.KindServiceStart, Time: 1, ItemID: 2, Status: int(Busy), QueueLen: 0}, recs[3])
	assert.Equal(t, trace.EventRecord{StationID: 0, Kind: trace.KindDeparture, Time: 2, ItemID: 2, Status: int(Idle), QueueLen: 0}, recs[4])
	assert.Equal(t, 0, st.WaitQ.Len())
}
