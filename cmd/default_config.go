package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/lbmsim/sim"
	"github.com/inference-sim/lbmsim/sim/trace"
)

// runOptions holds the run command's flag values. Flag defaults mirror
// sim.DefaultConfig; only flags set explicitly override the config file.
type runOptions struct {
	configPath     string
	outputDir      string
	nx             int
	nsteps         int
	plotInt        int
	tau            float64
	tauBulk        float64
	tauGhost       float64
	temperature    float64
	amplitude      float64
	seed           int64
	workers        int
	stabilityCheck bool
	traceLevel     string
	traceInterval  int
}

// register binds the run flags on cmd.
func (o *runOptions) register(cmd *cobra.Command) {
	d := sim.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML file with run parameters (flags given explicitly take precedence)")
	f.StringVar(&o.outputDir, "output-dir", d.OutputDir, "Directory for plotfiles and diagnostics (empty disables output)")
	f.IntVar(&o.nx, "nx", d.NX, "Cells per side of the periodic cube")
	f.IntVar(&o.nsteps, "nsteps", d.NSteps, "Number of time steps")
	f.IntVar(&o.plotInt, "plot-int", d.PlotInt, "Emit fields and structure factor every N steps (0 disables)")
	f.Float64Var(&o.tau, "tau", d.Tau, "Shear relaxation time")
	f.Float64Var(&o.tauBulk, "tau-bulk", d.TauBulk, "Bulk relaxation time (0 = tau)")
	f.Float64Var(&o.tauGhost, "tau-ghost", d.TauGhost, "Ghost relaxation time (0 = 1)")
	f.Float64Var(&o.temperature, "temperature", d.Temperature, "Thermal noise temperature (0 = deterministic)")
	f.Float64Var(&o.amplitude, "amplitude", d.Amplitude, "Initial shear-wave amplitude A")
	f.Int64Var(&o.seed, "seed", d.Seed, "Seed for thermal noise")
	f.IntVar(&o.workers, "workers", d.Workers, "Kernel goroutines (0 = GOMAXPROCS)")
	f.BoolVar(&o.stabilityCheck, "stability-check", d.StabilityCheck, "Abort on non-positive density or non-finite velocity")
	f.StringVar(&o.traceLevel, "trace-level", string(d.TraceLevel), "Step diagnostics: steps or none")
	f.IntVar(&o.traceInterval, "trace-interval", d.TraceInterval, "Record diagnostics every N steps (0 = every step)")
}

// resolve builds the run configuration: defaults, then the config file, then
// explicitly set flags. The result is validated.
func (o *runOptions) resolve(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = loadConfigFile(o.configPath, cfg); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if f.Changed("nx") {
		cfg.NX = o.nx
	}
	if f.Changed("nsteps") {
		cfg.NSteps = o.nsteps
	}
	if f.Changed("plot-int") {
		cfg.PlotInt = o.plotInt
	}
	if f.Changed("tau") {
		cfg.Tau = o.tau
	}
	if f.Changed("tau-bulk") {
		cfg.TauBulk = o.tauBulk
	}
	if f.Changed("tau-ghost") {
		cfg.TauGhost = o.tauGhost
	}
	if f.Changed("temperature") {
		cfg.Temperature = o.temperature
	}
	if f.Changed("amplitude") {
		cfg.Amplitude = o.amplitude
	}
	if f.Changed("seed") {
		cfg.Seed = o.seed
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("stability-check") {
		cfg.StabilityCheck = o.stabilityCheck
	}
	if f.Changed("trace-level") {
		cfg.TraceLevel = trace.TraceLevel(o.traceLevel)
	}
	if f.Changed("trace-interval") {
		cfg.TraceInterval = o.traceInterval
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadConfigFile decodes a YAML run file over base. Keys absent from the file keep
// their base values; unknown keys are errors so typos cannot pass silently.
func loadConfigFile(path string, base sim.Config) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config file: %w", err)
	}

	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
