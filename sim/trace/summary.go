package trace

// StationSummary aggregates the records of one station.
type StationSummary struct {
	StationID     int
	Arrivals      int
	ServiceStarts int
	Departures    int
	MaxQueueLen   int
	FirstEvent    float64
	LastEvent     float64
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalRecords int
	Stations     []StationSummary
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{}
	if st == nil {
		return summary
	}

	for _, log := range st.Stations {
		s := StationSummary{StationID: log.StationID}
		for i, r := range log.Records {
			if i == 0 {
				s.FirstEvent = r.Time
			}
			s.LastEvent = r.Time
			switch r.Kind {
			case KindArrival:
				s.Arrivals++
			case KindServiceStart:
				s.ServiceStarts++
			case KindDeparture:
				s.Departures++
			}
			s.MaxQueueLen = max(s.MaxQueueLen, r.QueueLen)
		}
		summary.TotalRecords += len(log.Records)
		summary.Stations = append(summary.Stations, s)
	}
	return summary
}
