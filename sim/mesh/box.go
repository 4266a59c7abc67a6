// Package mesh is the structured-grid runtime the solver runs on: index boxes,
// ghost-padded multi-component fields, periodic halo exchange, and a data-parallel
// kernel launcher.
package mesh

import "fmt"

// Box is an inclusive 3-D index range [Lo, Hi].
type Box struct {
	Lo [3]int
	Hi [3]int
}

// CubeBox returns the box [0, n-1]³.
func CubeBox(n int) Box {
	return Box{Hi: [3]int{n - 1, n - 1, n - 1}}
}

// Size returns the number of cells along each axis.
func (b Box) Size() [3]int {
	return [3]int{b.Hi[0] - b.Lo[0] + 1, b.Hi[1] - b.Lo[1] + 1, b.Hi[2] - b.Lo[2] + 1}
}

// NumPts returns the number of cells in the box, or 0 for an empty box.
func (b Box) NumPts() int {
	if !b.Ok() {
		return 0
	}
	s := b.Size()
	return s[0] * s[1] * s[2]
}

// Ok reports whether the box contains at least one cell.
func (b Box) Ok() bool {
	return b.Hi[0] >= b.Lo[0] && b.Hi[1] >= b.Lo[1] && b.Hi[2] >= b.Lo[2]
}

// Grow returns the box enlarged by n cells on every side.
func (b Box) Grow(n int) Box {
	for a := 0; a < 3; a++ {
		b.Lo[a] -= n
		b.Hi[a] += n
	}
	return b
}

// Contains reports whether (x, y, z) lies inside the box.
func (b Box) Contains(x, y, z int) bool {
	return x >= b.Lo[0] && x <= b.Hi[0] &&
		y >= b.Lo[1] && y <= b.Hi[1] &&
		z >= b.Lo[2] && z <= b.Hi[2]
}

func (b Box) String() string {
	return fmt.Sprintf("(%v,%v)", b.Lo, b.Hi)
}

// Geometry attaches physical extent and periodicity to an index domain.
type Geometry struct {
	Domain   Box
	ProbLo   [3]float64
	ProbHi   [3]float64
	Periodic [3]bool
}

// NewPeriodicCube returns a fully periodic n³ domain spanning the unit cube.
func NewPeriodicCube(n int) Geometry {
	return Geometry{
		Domain:   CubeBox(n),
		ProbHi:   [3]float64{1, 1, 1},
		Periodic: [3]bool{true, true, true},
	}
}

// AllPeriodic reports whether every axis wraps.
func (g Geometry) AllPeriodic() bool {
	return g.Periodic[0] && g.Periodic[1] && g.Periodic[2]
}

// CellSize returns the physical cell spacing along each axis.
func (g Geometry) CellSize() [3]float64 {
	s := g.Domain.Size()
	var dx [3]float64
	for a := 0; a < 3; a++ {
		dx[a] = (g.ProbHi[a] - g.ProbLo[a]) / float64(s[a])
	}
	return dx
}

// Wrap maps p into the domain along every periodic axis. Non-periodic axes are
// returned unchanged.
func (g Geometry) Wrap(p [3]int) [3]int {
	s := g.Domain.Size()
	for a := 0; a < 3; a++ {
		if !g.Periodic[a] {
			continue
		}
		r := (p[a] - g.Domain.Lo[a]) % s[a]
		if r < 0 {
			r += s[a]
		}
		p[a] = g.Domain.Lo[a] + r
	}
	return p
}
