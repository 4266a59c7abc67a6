package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/inference-sim/lbmsim/sim/lattice"
	"github.com/inference-sim/lbmsim/sim/trace"
)

// ErrInvalidConfig is returned (wrapped) when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrNumericalInstability is returned (wrapped) when the stability check finds a
// non-positive density or a non-finite velocity after a step.
var ErrNumericalInstability = errors.New("numerical instability")

// Config holds everything a run needs. The YAML keys match the run-parameter names
// used in input files; zero TauBulk and TauGhost select their defaults.
type Config struct {
	NX             int     `yaml:"nx"`              // cells per side of the periodic cube (must be > 0)
	NSteps         int     `yaml:"nsteps"`          // number of time steps (>= 0)
	PlotInt        int     `yaml:"plot_int"`        // emit every PlotInt steps; 0 disables output
	Tau            float64 `yaml:"tau"`             // shear relaxation time (must be > 0)
	TauBulk        float64 `yaml:"tau_bulk"`        // bulk relaxation time (0 = Tau)
	TauGhost       float64 `yaml:"tau_ghost"`       // ghost relaxation time (0 = 1)
	Temperature    float64 `yaml:"temperature"`     // thermal noise temperature (0 = deterministic)
	Amplitude      float64 `yaml:"A"`               // initial shear-wave amplitude
	Seed           int64   `yaml:"seed"`            // thermal noise seed
	Workers        int     `yaml:"workers"`         // kernel goroutines (0 = GOMAXPROCS)
	StabilityCheck bool    `yaml:"stability_check"` // abort on non-positive density or non-finite velocity
	Lattice        string  `yaml:"lattice"`         // velocity set name ("" = D3Q19)
	OutputDir      string  `yaml:"output_dir"`      // plotfile directory ("" = no files)

	TraceLevel    trace.TraceLevel `yaml:"trace_level"`    // "steps" (default) or "none"
	TraceInterval int              `yaml:"trace_interval"` // record every N steps (0 = every step)
}

// DefaultConfig returns the parameters of the reference shear-wave run.
func DefaultConfig() Config {
	return Config{
		NX:             16,
		NSteps:         100,
		PlotInt:        10,
		Tau:            1.0,
		Amplitude:      0.001,
		Seed:           42,
		StabilityCheck: true,
		TraceLevel:     trace.TraceLevelSteps,
	}
}

// Validate reports the first configuration error, wrapped with ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.NX <= 0:
		return fmt.Errorf("%w: nx must be > 0, got %d", ErrInvalidConfig, c.NX)
	case c.NSteps < 0:
		return fmt.Errorf("%w: nsteps must be >= 0, got %d", ErrInvalidConfig, c.NSteps)
	case c.PlotInt < 0:
		return fmt.Errorf("%w: plot_int must be >= 0, got %d", ErrInvalidConfig, c.PlotInt)
	case !(c.Tau > 0) || math.IsInf(c.Tau, 0):
		return fmt.Errorf("%w: tau must be a positive finite number, got %v", ErrInvalidConfig, c.Tau)
	case c.TauBulk < 0 || math.IsNaN(c.TauBulk):
		return fmt.Errorf("%w: tau_bulk must be >= 0, got %v", ErrInvalidConfig, c.TauBulk)
	case c.TauGhost < 0 || math.IsNaN(c.TauGhost):
		return fmt.Errorf("%w: tau_ghost must be >= 0, got %v", ErrInvalidConfig, c.TauGhost)
	case c.Temperature < 0 || math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0):
		return fmt.Errorf("%w: temperature must be finite and >= 0, got %v", ErrInvalidConfig, c.Temperature)
	case c.Temperature > 0 && c.Tau <= 0.5:
		return fmt.Errorf("%w: thermal runs need tau > 0.5, got %v", ErrInvalidConfig, c.Tau)
	case c.Temperature > 0 && c.bulkTau() <= 0.5:
		return fmt.Errorf("%w: thermal runs need tau_bulk > 0.5, got %v", ErrInvalidConfig, c.bulkTau())
	case c.Temperature > 0 && c.ghostTau() <= 0.5:
		return fmt.Errorf("%w: thermal runs need tau_ghost > 0.5, got %v", ErrInvalidConfig, c.ghostTau())
	case math.IsNaN(c.Amplitude) || math.IsInf(c.Amplitude, 0):
		return fmt.Errorf("%w: A must be finite, got %v", ErrInvalidConfig, c.Amplitude)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	case !trace.IsValidTraceLevel(string(c.TraceLevel)):
		return fmt.Errorf("%w: unknown trace_level %q", ErrInvalidConfig, c.TraceLevel)
	case c.TraceInterval < 0:
		return fmt.Errorf("%w: trace_interval must be >= 0, got %d", ErrInvalidConfig, c.TraceInterval)
	}
	if _, err := lattice.ByName(c.Lattice); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// bulkTau is TauBulk with its default (Tau) applied.
func (c Config) bulkTau() float64 {
	if c.TauBulk == 0 {
		return c.Tau
	}
	return c.TauBulk
}

// ghostTau is TauGhost with its default (1) applied.
func (c Config) ghostTau() float64 {
	if c.TauGhost == 0 {
		return 1
	}
	return c.TauGhost
}

// relaxationParams maps the run parameters onto the collision table.
func (c Config) relaxationParams() lattice.RelaxationParams {
	return lattice.RelaxationParams{
		Tau:         c.Tau,
		TauBulk:     c.TauBulk,
		TauGhost:    c.TauGhost,
		Temperature: c.Temperature,
	}
}

// Viscosity returns the kinematic shear viscosity cs²(τ − ½) in lattice units.
// Every compiled-in lattice has cs² = 1/3.
func (c Config) Viscosity() float64 {
	return (c.Tau - 0.5) / 3
}

// ShearWaveDecayRate returns the hydrodynamic decay rate νk² of the initial
// single-mode shear wave, k = 2π/nx.
func (c Config) ShearWaveDecayRate() float64 {
	k := 2 * math.Pi / float64(c.NX)
	return c.Viscosity() * k * k
}
