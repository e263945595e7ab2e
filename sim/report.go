// Derives per-station performance metrics from the accumulators:
// traffic intensity, time-averaged occupancy, utilization and delays.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// NotApplicable is printed for delay metrics of a station that served nothing.
const NotApplicable = "N/A (no customers served)"

// StationReport is the end-of-run summary of one station.
// Pointer fields are nil when the metric is not applicable.
type StationReport struct {
	StationID   int     `json:"station_id"`
	ArrivalRate float64 `json:"arrival_rate"`
	ServiceRate float64 `json:"service_rate"`

	TrafficIntensity  float64 `json:"traffic_intensity"`
	AvgQueueLength    float64 `json:"avg_queue_length"`
	ServerUtilization float64 `json:"server_utilization"`
	AvgSystemLength   float64 `json:"avg_system_length"`

	AvgQueueingDelay *float64 `json:"avg_queueing_delay"`
	AvgSystemDelay   *float64 `json:"avg_system_delay"`

	SystemDelayStdDev *float64 `json:"system_delay_stddev,omitempty"`
	SystemDelayP50    *float64 `json:"system_delay_p50,omitempty"`
	SystemDelayP90    *float64 `json:"system_delay_p90,omitempty"`
	SystemDelayP99    *float64 `json:"system_delay_p99,omitempty"`

	// M/M/1 mean number in system rho/(1-rho); set only when 0 < rho < 1.
	TheoreticalSystemLength *float64 `json:"theoretical_system_length,omitempty"`

	Arrivals       int     `json:"arrivals"`
	Served         int     `json:"served"`
	MaxQueueLength int     `json:"max_queue_length"`
	LastEventTime  float64 `json:"last_event_time"`
}

// NewStationReport derives the report of st from its accumulators.
// Time averages divide by the station's own last event time and are 0
// when no simulated time elapsed.
func NewStationReport(st *Station) StationReport {
	s := st.Stats
	r := StationReport{
		StationID:      st.ID,
		ArrivalRate:    st.ArrivalRate,
		ServiceRate:    st.ServiceRate,
		Arrivals:       st.received,
		Served:         s.Served,
		MaxQueueLength: s.MaxQueueLen,
		LastEventTime:  s.LastEventTime,
	}
	if st.ArrivalRate > 0 && st.ServiceRate > 0 {
		r.TrafficIntensity = st.ArrivalRate / st.ServiceRate
		if r.TrafficIntensity < 1 {
			r.TheoreticalSystemLength = ptr(r.TrafficIntensity / (1 - r.TrafficIntensity))
		}
	}
	if s.LastEventTime > 0 {
		r.AvgQueueLength = s.AreaQueue / s.LastEventTime
		r.ServerUtilization = s.AreaServer / s.LastEventTime
		r.AvgSystemLength = s.AreaSystem() / s.LastEventTime
	}
	if s.Served > 0 {
		r.AvgQueueingDelay = ptr(s.TotalQueueDelay / float64(s.Served))
		r.AvgSystemDelay = ptr(s.TotalSystemDelay / float64(s.Served))

		sorted := append([]float64(nil), s.SystemDelays...)
		sort.Float64s(sorted)
		r.SystemDelayP50 = ptr(stat.Quantile(0.50, stat.Empirical, sorted, nil))
		r.SystemDelayP90 = ptr(stat.Quantile(0.90, stat.Empirical, sorted, nil))
		r.SystemDelayP99 = ptr(stat.Quantile(0.99, stat.Empirical, sorted, nil))
		if len(sorted) > 1 {
			_, std := stat.MeanStdDev(sorted, nil)
			r.SystemDelayStdDev = ptr(std)
		}
	}
	return r
}

// WriteText renders the report in the fixed-precision text layout of the
// per-station report files.
func (r StationReport) WriteText(w io.Writer) error {
	lines := []string{
		"Simulation Report",
		fmt.Sprintf("Traffic Intensity: %.8f", r.TrafficIntensity),
		fmt.Sprintf("Average Queue Length: %.8f %.8f", r.AvgQueueLength, r.LastEventTime),
		fmt.Sprintf("Server Utilization: %.8f", r.ServerUtilization),
		fmt.Sprintf("System Length: %.8f", r.AvgSystemLength),
		"Queueing Delay: " + formatOptional(r.AvgQueueingDelay),
		"System Delay: " + formatOptional(r.AvgSystemDelay),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// RunResults is the JSON document written at the end of a run.
type RunResults struct {
	Seed      int64           `json:"seed"`
	RNG       string          `json:"rng"`
	Horizon   float64         `json:"horizon"`
	EndTime   float64         `json:"end_time"`
	Events    int             `json:"events"`
	Truncated bool            `json:"truncated"`
	Stations  []StationReport `json:"stations"`
}

// Results collects the run-level summary of a finished network.
func (n *Network) Results() RunResults {
	horizon := n.scheduler.Horizon()
	if math.IsInf(horizon, 1) {
		horizon = 0
	}
	return RunResults{
		Seed:      n.config.Seed,
		RNG:       n.config.RNG,
		Horizon:   horizon,
		EndTime:   n.scheduler.Now(),
		Events:    n.scheduler.Dispatched(),
		Truncated: n.scheduler.Truncated(),
		Stations:  n.Reports(),
	}
}

// Print writes a human-readable summary of all stations to w.
func (rr RunResults) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Events dispatched    : %d\n", rr.Events)
	fmt.Fprintf(w, "End time             : %.6f\n", rr.EndTime)
	for _, r := range rr.Stations {
		fmt.Fprintf(w, "--- station %d ---\n", r.StationID)
		fmt.Fprintf(w, "Arrivals / Served    : %d / %d\n", r.Arrivals, r.Served)
		fmt.Fprintf(w, "Traffic Intensity    : %.4f\n", r.TrafficIntensity)
		fmt.Fprintf(w, "Avg Queue Length     : %.4f\n", r.AvgQueueLength)
		fmt.Fprintf(w, "Server Utilization   : %.4f\n", r.ServerUtilization)
		fmt.Fprintf(w, "Avg System Length    : %.4f\n", r.AvgSystemLength)
		fmt.Fprintf(w, "Avg Queueing Delay   : %s\n", formatOptional(r.AvgQueueingDelay))
		fmt.Fprintf(w, "Avg System Delay     : %s\n", formatOptional(r.AvgSystemDelay))
		if r.SystemDelayP99 != nil {
			fmt.Fprintf(w, "System Delay p50/p90/p99 : %.4f / %.4f / %.4f\n", *r.SystemDelayP50, *r.SystemDelayP90, *r.SystemDelayP99)
		}
	}
}

// SaveResults writes rr as indented JSON to path.
func (rr RunResults) SaveResults(path string) error {
	data, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	logrus.Debugf("results written to %s", path)
	return nil
}

// LoadResults reads a results file written by SaveResults.
func LoadResults(path string) (RunResults, error) {
	var rr RunResults
	data, err := os.ReadFile(path)
	if err != nil {
		return rr, fmt.Errorf("reading results %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &rr); err != nil {
		return rr, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return rr, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return NotApplicable
	}
	return fmt.Sprintf("%.8f", *v)
}

func ptr(v float64) *float64 {
	return &v
}
