// Package promexport publishes end-of-run station reports as Prometheus
// gauges so runs can be scraped or dropped into a node_exporter textfile
// directory.
package promexport

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tandem-sim/tandem-sim/sim"
)

// Exporter bundles the per-station gauges.
type Exporter struct {
	registry *prometheus.Registry

	TrafficIntensity  *prometheus.GaugeVec
	AvgQueueLength    *prometheus.GaugeVec
	ServerUtilization *prometheus.GaugeVec
	AvgSystemLength   *prometheus.GaugeVec
	AvgQueueingDelay  *prometheus.GaugeVec
	AvgSystemDelay    *prometheus.GaugeVec
	Served            *prometheus.GaugeVec
	Arrivals          *prometheus.GaugeVec
}

// NewExporter registers the station gauges against reg, creating a fresh
// registry when reg is nil.
func NewExporter(reg *prometheus.Registry) (*Exporter, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	e := &Exporter{registry: reg}
	gauges := []struct {
		dst  **prometheus.GaugeVec
		name string
		help string
	}{
		{&e.TrafficIntensity, "tandem_station_traffic_intensity", "Arrival rate divided by service rate."},
		{&e.AvgQueueLength, "tandem_station_avg_queue_length", "Time-averaged number of waiting items."},
		{&e.ServerUtilization, "tandem_station_server_utilization", "Fraction of time the server was busy."},
		{&e.AvgSystemLength, "tandem_station_avg_system_length", "Time-averaged number of items at the station."},
		{&e.AvgQueueingDelay, "tandem_station_avg_queueing_delay", "Mean waiting time before service."},
		{&e.AvgSystemDelay, "tandem_station_avg_system_delay", "Mean time from arrival to departure."},
		{&e.Served, "tandem_station_served_items", "Items that completed service."},
		{&e.Arrivals, "tandem_station_arrivals", "Items that arrived at the station."},
	}
	for _, g := range gauges {
		vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: g.name, Help: g.help}, []string{"station"})
		if err := reg.Register(vec); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
				if !ok {
					return nil, fmt.Errorf("collector %s already registered with a different type", g.name)
				}
				vec = existing
			} else {
				return nil, fmt.Errorf("registering %s: %w", g.name, err)
			}
		}
		*g.dst = vec
	}
	return e, nil
}

// Registry returns the registry the gauges live in.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe sets the gauges from reports. Delay gauges are left unset for
// stations that served nothing.
func (e *Exporter) Observe(reports []sim.StationReport) {
	for _, r := range reports {
		label := strconv.Itoa(r.StationID)
		e.TrafficIntensity.WithLabelValues(label).Set(r.TrafficIntensity)
		e.AvgQueueLength.WithLabelValues(label).Set(r.AvgQueueLength)
		e.ServerUtilization.WithLabelValues(label).Set(r.ServerUtilization)
		e.AvgSystemLength.WithLabelValues(label).Set(r.AvgSystemLength)
		e.Served.WithLabelValues(label).Set(float64(r.Served))
		e.Arrivals.WithLabelValues(label).Set(float64(r.Arrivals))
		if r.AvgQueueingDelay != nil {
			e.AvgQueueingDelay.WithLabelValues(label).Set(*r.AvgQueueingDelay)
		}
		if r.AvgSystemDelay != nil {
			e.AvgSystemDelay.WithLabelValues(label).Set(*r.AvgSystemDelay)
		}
	}
}

// WriteTextfile writes the registry in the Prometheus text exposition format.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
