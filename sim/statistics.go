package sim

// StationStats holds the time-weighted areas and delay accumulators of one station.
type StationStats struct {
	AreaQueue  float64 // integral of queue length over time
	AreaServer float64 // integral of the busy indicator over time

	TotalQueueDelay  float64 // sum of per-item waiting times before service
	TotalSystemDelay float64 // sum of per-item sojourn times (arrival to departure)
	Served           int     // items that completed service

	LastEventTime float64 // time of the most recent statistics update
	MaxQueueLen   int     // largest queue length observed at an update

	QueueDelays  []float64 // per-item waiting times, in service-start order
	SystemDelays []float64 // per-item sojourn times, in departure order
}

// AreaSystem is the integral of the number of items at the station.
// It is the sum of the queue and server areas by construction.
func (s *StationStats) AreaSystem() float64 {
	return s.AreaQueue + s.AreaServer
}

// Update advances the areas to now using the state that held since the
// previous update. It must run before the state is mutated.
func (s *StationStats) Update(now float64, queueLen int, busy bool) {
	elapsed := now - s.LastEventTime
	s.LastEventTime = now
	s.AreaQueue += elapsed * float64(queueLen)
	if busy {
		s.AreaServer += elapsed
	}
	s.MaxQueueLen = max(s.MaxQueueLen, queueLen)
}

func (s *StationStats) recordQueueDelay(d float64) {
	s.TotalQueueDelay += d
	s.QueueDelays = append(s.QueueDelays, d)
}

func (s *StationStats) recordDeparture(d float64) {
	s.Served++
	s.TotalSystemDelay += d
	s.SystemDelays = append(s.SystemDelays, d)
}
