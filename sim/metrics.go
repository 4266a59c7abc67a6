// Tracks run-wide bookkeeping such as step count, emitted snapshots and throughput.

package sim

import (
	"fmt"
	"time"

	"github.com/inference-sim/lbmsim/sim/trace"
)

// Metrics aggregates statistics about the run
// for final reporting.
type Metrics struct {
	Steps       int           // completed time steps
	Emissions   int           // snapshot pairs handed to the emitter
	CellUpdates int64         // interior cell updates (steps × cells)
	WallTime    time.Duration // time spent inside Run
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MLUPS returns million lattice-cell updates per wall-clock second.
func (m *Metrics) MLUPS() float64 {
	if m.WallTime <= 0 {
		return 0
	}
	return float64(m.CellUpdates) / m.WallTime.Seconds() / 1e6
}

// Print displays aggregated metrics at the end of the run.
// Includes throughput, conservation drift, and the fitted shear-wave decay rate
// next to the hydrodynamic prediction.
func (m *Metrics) Print(summary *trace.TraceSummary, expectedDecay float64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Steps                : %d\n", m.Steps)
	fmt.Printf("Emissions            : %d\n", m.Emissions)
	fmt.Printf("Wall Time            : %s\n", m.WallTime.Round(time.Millisecond))
	fmt.Printf("Throughput           : %.2f MLUPS\n", m.MLUPS())
	if summary == nil || summary.Records == 0 {
		return
	}
	fmt.Printf("Mass                 : %.12g -> %.12g\n", summary.InitialMass, summary.FinalMass)
	fmt.Printf("Max Mass Drift       : %.3e (relative)\n", summary.MaxMassDrift)
	fmt.Printf("Max Momentum Drift   : %.3e\n", summary.MaxMomentumDrift)
	fmt.Printf("Min Density          : %.6f\n", summary.MinDensity)
	fmt.Printf("Shear Amplitude      : %.6e -> %.6e\n", summary.InitialAmplitude, summary.FinalAmplitude)
	if summary.DecayFitPoints >= 2 {
		fmt.Printf("Decay Rate           : %.6e (nu k^2 = %.6e, R^2 = %.4f)\n",
			summary.DecayRate, expectedDecay, summary.DecayFitR2)
	}
}
