package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tandem-sim/tandem-sim/sim"
	"github.com/tandem-sim/tandem-sim/sim/promexport"
	"github.com/tandem-sim/tandem-sim/sim/trace"
)

var (
	configPath   string    // Network YAML file (optional)
	seed         int64     // Master seed for all station streams
	horizon      float64   // Simulation time limit (0 = run until no events remain)
	logLevel     string    // Log verbosity level
	numStations  int       // Stations in the chain when no config file is given
	arrivalRates []float64 // One value for all stations, or one per station
	serviceRates []float64 // One value for all stations, or one per station
	maxArrivals  int       // Cap on self-generated arrivals per source station
	rngBackend   string    // "partitioned" or "mrg32k3a"
	traceLevel   string    // "none" or "events"
	outputDir    string    // Directory for per-station trace/report files
	resultsPath  string    // JSON results file
	promFile     string    // Prometheus textfile
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tandem-sim",
	Short: "Discrete-event simulator for tandem queueing networks",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tandem network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		var cfg sim.NetworkConfig
		if configPath != "" {
			fileCfg, err := loadConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = fileCfg.NetworkConfig(seed)
		} else {
			var err error
			cfg, err = flagNetworkConfig(numStations, arrivalRates, serviceRates, maxArrivals)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg.Seed, cfg.Horizon, cfg.RNG = seed, horizon, rngBackend
			cfg.Trace = traceLevel == string(trace.TraceLevelEvents)
		}
		if err := applyFlagOverrides(&cfg, cmd.Flags().Changed); err != nil {
			logrus.Fatalf("%v", err)
		}

		network, err := sim.NewNetwork(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := network.Run(ctx); err != nil {
			logrus.Errorf("%v", err)
		}

		results := network.Results()
		results.Print(os.Stdout)
		if tr := network.Trace(); tr != nil {
			printTraceSummary(os.Stdout, trace.Summarize(tr))
		}

		if outputDir != "" {
			writeStationFiles(outputDir, network)
		}
		if resultsPath != "" {
			if err := results.SaveResults(resultsPath); err != nil {
				logrus.Errorf("%v", err)
			}
		}
		if promFile != "" {
			if err := exportMetrics(promFile, results.Stations); err != nil {
				logrus.Errorf("%v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// reportCmd re-renders a saved results file.
var reportCmd = &cobra.Command{
	Use:   "report <results.json>",
	Short: "Print the summary stored in a results file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevel()
		results, err := sim.LoadResults(args[0])
		if err != nil {
			return err
		}
		results.Print(cmd.OutOrStdout())
		return nil
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// flagNetworkConfig builds n stations from the rate flags. A single rate is
// shared by every station; otherwise one rate per station is required.
func flagNetworkConfig(n int, arrival, service []float64, maxArrivals int) (sim.NetworkConfig, error) {
	if n < 1 {
		return sim.NetworkConfig{}, fmt.Errorf("--stations must be at least 1, got %d", n)
	}
	arr, err := perStation("arrival-rate", arrival, n)
	if err != nil {
		return sim.NetworkConfig{}, err
	}
	svc, err := perStation("service-rate", service, n)
	if err != nil {
		return sim.NetworkConfig{}, err
	}
	cfg := sim.NetworkConfig{RNG: sim.RNGPartitioned, Stations: make([]sim.StationConfig, n)}
	for i := range cfg.Stations {
		cfg.Stations[i] = sim.StationConfig{ArrivalRate: arr[i], ServiceRate: svc[i], MaxArrivals: maxArrivals}
	}
	return cfg, nil
}

// applyFlagOverrides copies every explicitly set flag over cfg, so flags win
// over the config file. --stations must agree with the file's station count;
// rate flags take one value for all stations or one per station.
func applyFlagOverrides(cfg *sim.NetworkConfig, changed func(name string) bool) error {
	n := len(cfg.Stations)
	if changed("stations") && numStations != n {
		return fmt.Errorf("--stations=%d disagrees with the %d stations of the network", numStations, n)
	}
	if changed("arrival-rate") {
		rates, err := perStation("arrival-rate", arrivalRates, n)
		if err != nil {
			return err
		}
		for i := range cfg.Stations {
			cfg.Stations[i].ArrivalRate = rates[i]
		}
	}
	if changed("service-rate") {
		rates, err := perStation("service-rate", serviceRates, n)
		if err != nil {
			return err
		}
		for i := range cfg.Stations {
			cfg.Stations[i].ServiceRate = rates[i]
		}
	}
	if changed("max-arrivals") {
		for i := range cfg.Stations {
			cfg.Stations[i].MaxArrivals = maxArrivals
		}
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("horizon") {
		cfg.Horizon = horizon
	}
	if changed("rng") {
		cfg.RNG = rngBackend
	}
	if changed("trace") {
		cfg.Trace = traceLevel == string(trace.TraceLevelEvents)
	}
	return nil
}

func perStation(flag string, values []float64, n int) ([]float64, error) {
	switch len(values) {
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	case n:
		return values, nil
	default:
		return nil, fmt.Errorf("--%s needs 1 or %d values, got %d", flag, n, len(values))
	}
}

func exportMetrics(path string, reports []sim.StationReport) error {
	exp, err := promexport.NewExporter(nil)
	if err != nil {
		return err
	}
	exp.Observe(reports)
	return exp.WriteTextfile(path)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Network YAML file; explicitly set flags override its values")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for station random streams")
	runCmd.Flags().Float64Var(&horizon, "horizon", 0, "Simulation time limit (0 = until no events remain)")
	runCmd.Flags().IntVar(&numStations, "stations", 3, "Number of stations in the chain")
	runCmd.Flags().Float64SliceVar(&arrivalRates, "arrival-rate", []float64{3.0}, "Arrival rate(s), one value or one per station")
	runCmd.Flags().Float64SliceVar(&serviceRates, "service-rate", []float64{3.0}, "Service rate(s), one value or one per station")
	runCmd.Flags().IntVar(&maxArrivals, "max-arrivals", sim.DefaultMaxArrivals, "Arrivals generated by the source station (negative = unlimited, needs --horizon)")
	runCmd.Flags().StringVar(&rngBackend, "rng", sim.RNGPartitioned, "Random stream backend (partitioned, mrg32k3a)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, events)")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for per-station trace and report files")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write JSON results to this file")
	runCmd.Flags().StringVar(&promFile, "prom-file", "", "Write Prometheus text-format metrics to this file")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
}
