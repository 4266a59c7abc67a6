package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/lbmsim/sim"
	"github.com/inference-sim/lbmsim/sim/output"
	"github.com/inference-sim/lbmsim/sim/trace"
)

var (
	logLevel string     // Log verbosity level
	runOpts  runOptions // CLI flags for the run command
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lbmsim",
	Short: "Fluctuating lattice Boltzmann simulator with structure-factor diagnostics",
}

// runCmd executes the simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a decaying shear-wave simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := runOpts.resolve(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		startTime := time.Now()
		runID := uuid.New()
		writer, err := output.NewPlotfileWriter(cfg.OutputDir, runID)
		if err != nil {
			logrus.Fatalf("Could not prepare output directory %q: %v", cfg.OutputDir, err)
		}
		var emitter sim.Emitter = sim.NopEmitter{}
		if writer != nil {
			emitter = writer
		}

		s, err := sim.NewSimulator(cfg, emitter)
		if err != nil {
			logrus.Fatalf("Could not initialize simulation: %v", err)
		}
		if err := writer.WriteConfig(cfg); err != nil {
			logrus.Fatalf("Could not write run configuration: %v", err)
		}

		logrus.Infof("Starting run %s: nx=%d, nsteps=%d, plot_int=%d, tau=%g, T=%g, A=%g, seed=%d",
			runID, cfg.NX, cfg.NSteps, cfg.PlotInt, cfg.Tau, cfg.Temperature, cfg.Amplitude, cfg.Seed)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		runErr := s.Run(ctx)
		if err := writer.WriteTrace(s.Trace()); err != nil {
			logrus.Errorf("Could not write diagnostics: %v", err)
		}
		if runErr != nil {
			logrus.Fatalf("Simulation failed: %v", runErr)
		}

		s.Metrics.Print(trace.Summarize(s.Trace()), cfg.ShearWaveDecayRate())
		if writer != nil {
			logrus.Infof("Wrote %d snapshots to %s", writer.Emissions(), writer.Dir())
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runOpts.register(runCmd)

	rootCmd.AddCommand(runCmd)
}
