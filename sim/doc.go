// Package sim provides the time-stepping engine for a fluctuating multiple-relaxation-time
// lattice Boltzmann fluid on a periodic cube.
//
// # Reading Guide
//
// Start with these three files to understand the step loop:
//   - config.go: run parameters, validation, and the sentinel errors
//   - kernel.go: the fused collide-and-stream update for one cell
//   - simulator.go: initialization, the step sequence, and snapshot emission
//
// # Architecture
//
// The sim package owns the driver; the numerics live in sub-packages:
//   - sim/lattice/: velocity sets, the moment basis, equilibrium, MRT relaxation
//   - sim/mesh/: boxes, periodic geometry, ghosted fields, the parallel runner
//   - sim/structfact/: online structure-factor accumulation over FFTs
//   - sim/trace/: per-step conservation and decay diagnostics
//   - sim/output/: plotfile writer implementing Emitter
//
// # Step sequence
//
// Each step collides and streams every interior cell from the current population
// field into the next one, swaps the two, refreshes ghost cells, extracts density and
// velocity, applies the stability check, and feeds the velocity field to the
// structure-factor accumulator. Random numbers come from per-cell streams keyed by
// (seed, step, cell), so results do not depend on the worker count.
package sim
