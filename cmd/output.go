package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tandem-sim/tandem-sim/sim"
	"github.com/tandem-sim/tandem-sim/sim/trace"
)

// writeStationFiles writes report<ID>.out for every station and, when the
// run was traced, trace<ID>.out. A file that cannot be written is reported
// and skipped; the remaining files are still produced.
func writeStationFiles(dir string, network *sim.Network) int {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.Errorf("Cannot create output directory %s: %v", dir, err)
		return 0
	}
	written := 0
	for _, r := range network.Reports() {
		path := filepath.Join(dir, fmt.Sprintf("report%d.out", r.StationID))
		if err := writeFile(path, r.WriteText); err != nil {
			logrus.Errorf("Cannot write the report file: %v", err)
			continue
		}
		written++
	}
	if tr := network.Trace(); tr != nil {
		for _, log := range tr.Stations {
			path := filepath.Join(dir, fmt.Sprintf("trace%d.out", log.StationID))
			err := writeFile(path, func(w io.Writer) error {
				_, err := log.WriteTo(w)
				return err
			})
			if err != nil {
				logrus.Errorf("Cannot write the trace file: %v", err)
				continue
			}
			written++
		}
	}
	return written
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := fill(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logrus.Debugf("Successfully wrote to '%s'", path)
	return nil
}

// printTraceSummary writes the per-station event counts of a traced run.
func printTraceSummary(w io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintf(w, "=== Trace Summary (%d records) ===\n", summary.TotalRecords)
	for _, s := range summary.Stations {
		fmt.Fprintf(w, "station %d: a=%d s=%d d=%d max_queue=%d window=[%.6f, %.6f]\n",
			s.StationID, s.Arrivals, s.ServiceStarts, s.Departures, s.MaxQueueLen, s.FirstEvent, s.LastEvent)
	}
}
