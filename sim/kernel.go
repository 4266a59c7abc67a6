package sim

import (
	"github.com/inference-sim/lbmsim/sim/lattice"
	"github.com/inference-sim/lbmsim/sim/mesh"
)

// Kernel is the fused collide-and-stream update for one cell. It holds only
// read-only tables, so one Kernel serves every worker goroutine.
type Kernel struct {
	vs    *lattice.VelocitySet
	relax *lattice.Relaxation
	geom  mesh.Geometry
	noise uint64 // subsystemSeed of the collision stream
}

// NewKernel binds a velocity set, relaxation table, geometry and noise key.
func NewKernel(vs *lattice.VelocitySet, relax *lattice.Relaxation, geom mesh.Geometry, key SimulationKey) *Kernel {
	return &Kernel{vs: vs, relax: relax, geom: geom, noise: key.subsystemSeed(SubsystemCollision)}
}

// StreamCollide relaxes the populations of interior cell (x, y, z) in cur in
// moment space and pushes post-collision component i to the periodic image of
// (x, y, z) + c_i in next. step selects the thermal noise stream.
//
// Streaming is a permutation of (cell, direction) pairs, so every interior entry
// of next is written by exactly one source cell.
func (k *Kernel) StreamCollide(x, y, z, step int, cur, next *mesh.Field) {
	q := k.vs.Q()
	var m, meq, post [lattice.MaxQ]float64

	k.vs.ToMoments(m[:q], cur.Cell(x, y, z))
	rho := m[0]
	u := [3]float64{m[1] / rho, m[2] / rho, m[3] / rho}
	k.vs.EquilibriumMoments(meq[:q], rho, u)

	var noise lattice.Normal
	if k.relax.Thermal() {
		cr := acquireCellRand(k.noise, step, k.cellIndex(x, y, z))
		defer releaseCellRand(cr)
		noise = cr.rng
	}
	k.relax.Collide(m[:q], meq[:q], rho, noise)
	k.vs.ToPopulations(post[:q], m[:q])

	for i := 0; i < q; i++ {
		c := k.vs.Direction(i)
		p := k.geom.Wrap([3]int{x + c[0], y + c[1], z + c[2]})
		next.Set(p[0], p[1], p[2], i, post[i])
	}
}

// cellIndex is the x-fastest linear index of an interior cell.
func (k *Kernel) cellIndex(x, y, z int) int64 {
	d := k.geom.Domain
	s := d.Size()
	return int64(x-d.Lo[0]) + int64(s[0])*(int64(y-d.Lo[1])+int64(s[1])*int64(z-d.Lo[2]))
}
