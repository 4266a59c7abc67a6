// Package trace records per-step conservation and decay diagnostics of a lattice
// Boltzmann run. This package has no dependencies on sim/; it stores pure data types.
package trace

// StepRecord captures the domain-integrated state after one step.
// The csv tags define the column layout of diagnostics files.
type StepRecord struct {
	Step       int     `csv:"step"`
	Time       float64 `csv:"time"`
	Mass       float64 `csv:"mass"`
	MomentumX  float64 `csv:"momentum_x"`
	MomentumY  float64 `csv:"momentum_y"`
	MomentumZ  float64 `csv:"momentum_z"`
	MinDensity float64 `csv:"min_density"`
	Amplitude  float64 `csv:"amplitude"` // projection of u_y onto the initial shear mode
}
