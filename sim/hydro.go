package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/lbmsim/sim/lattice"
	"github.com/inference-sim/lbmsim/sim/mesh"
)

// Hydro field component layout.
const (
	HydroRho = iota
	HydroUx
	HydroUy
	HydroUz
	numHydro
)

// HydroNames labels the hydro field components in output files.
var HydroNames = []string{"rho", "ux", "uy", "uz"}

// extractHydro fills hydro with density and velocity over its whole grown box.
// pop must have the same grown box with valid ghost cells.
func extractHydro(r *mesh.Runner, vs *lattice.VelocitySet, pop, hydro *mesh.Field) {
	r.ParallelFor(hydro.GrownBox(), func(x, y, z int) {
		rho, u := vs.Hydro(pop.Cell(x, y, z))
		h := hydro.Cell(x, y, z)
		h[HydroRho] = rho
		h[HydroUx] = u[0]
		h[HydroUy] = u[1]
		h[HydroUz] = u[2]
	})
}

// hydroStats summarizes the interior of a hydro field.
type hydroStats struct {
	MinDensity float64
	MinCell    [3]int
	NonFinite  int
	FirstBad   [3]int // first cell with a non-finite value, x-fastest order
}

func scanHydro(hydro *mesh.Field) hydroStats {
	st := hydroStats{MinDensity: math.Inf(1)}
	v := hydro.ValidBox()
	for z := v.Lo[2]; z <= v.Hi[2]; z++ {
		for y := v.Lo[1]; y <= v.Hi[1]; y++ {
			for x := v.Lo[0]; x <= v.Hi[0]; x++ {
				h := hydro.Cell(x, y, z)
				finite := true
				for _, val := range h {
					if math.IsNaN(val) || math.IsInf(val, 0) {
						finite = false
						break
					}
				}
				if !finite {
					if st.NonFinite == 0 {
						st.FirstBad = [3]int{x, y, z}
					}
					st.NonFinite++
					continue
				}
				if h[HydroRho] < st.MinDensity {
					st.MinDensity = h[HydroRho]
					st.MinCell = [3]int{x, y, z}
				}
			}
		}
	}
	return st
}

// check applies the density policy: every interior cell needs a positive density
// and finite values.
func (st hydroStats) check(step int) error {
	if st.NonFinite > 0 {
		return fmt.Errorf("step %d: %d cells with non-finite density or velocity, first at %v: %w",
			step, st.NonFinite, st.FirstBad, ErrNumericalInstability)
	}
	if st.MinDensity <= 0 {
		return fmt.Errorf("step %d: non-positive density %g at %v: %w",
			step, st.MinDensity, st.MinCell, ErrNumericalInstability)
	}
	return nil
}

// latticeMomentum returns Σ_cells Σ_i f_i c_i over the interior of pop.
func latticeMomentum(vs *lattice.VelocitySet, pop *mesh.Field) [3]float64 {
	var p [3]float64
	v := pop.ValidBox()
	for z := v.Lo[2]; z <= v.Hi[2]; z++ {
		for y := v.Lo[1]; y <= v.Hi[1]; y++ {
			for x := v.Lo[0]; x <= v.Hi[0]; x++ {
				f := pop.Cell(x, y, z)
				for i := 0; i < vs.Q(); i++ {
					c := vs.Direction(i)
					p[0] += f[i] * float64(c[0])
					p[1] += f[i] * float64(c[1])
					p[2] += f[i] * float64(c[2])
				}
			}
		}
	}
	return p
}
