package lattice

import (
	"fmt"
	"sync"
)

// d3q19Dirs lists rest, the six face neighbors, then the twelve edge neighbors.
var d3q19Dirs = [][3]int{
	{0, 0, 0},
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	{1, 1, 0}, {-1, -1, 0}, {1, -1, 0}, {-1, 1, 0},
	{1, 0, 1}, {-1, 0, -1}, {1, 0, -1}, {-1, 0, 1},
	{0, 1, 1}, {0, -1, -1}, {0, 1, -1}, {0, -1, 1},
}

func d3q19Weights() []float64 {
	w := make([]float64, len(d3q19Dirs))
	for i, c := range d3q19Dirs {
		switch c[0]*c[0] + c[1]*c[1] + c[2]*c[2] {
		case 0:
			w[i] = 1.0 / 3.0
		case 1:
			w[i] = 1.0 / 18.0
		default:
			w[i] = 1.0 / 36.0
		}
	}
	return w
}

// d3q19Basis is the weighted-orthogonal mode basis of Dünweg, Schiller and Ladd
// (PRE 76, 036704). Rows are orthogonal under Σ_i w_i e_k(c_i) e_l(c_i).
var d3q19Basis = []BasisFunc{
	func(c [3]int) float64 { return 1 },
	func(c [3]int) float64 { return x(c) },
	func(c [3]int) float64 { return y(c) },
	func(c [3]int) float64 { return z(c) },
	func(c [3]int) float64 { return sq(c) - 1 },
	func(c [3]int) float64 { return 3*x(c)*x(c) - sq(c) },
	func(c [3]int) float64 { return y(c)*y(c) - z(c)*z(c) },
	func(c [3]int) float64 { return x(c) * y(c) },
	func(c [3]int) float64 { return y(c) * z(c) },
	func(c [3]int) float64 { return z(c) * x(c) },
	func(c [3]int) float64 { return (3*sq(c) - 5) * x(c) },
	func(c [3]int) float64 { return (3*sq(c) - 5) * y(c) },
	func(c [3]int) float64 { return (3*sq(c) - 5) * z(c) },
	func(c [3]int) float64 { return (y(c)*y(c) - z(c)*z(c)) * x(c) },
	func(c [3]int) float64 { return (z(c)*z(c) - x(c)*x(c)) * y(c) },
	func(c [3]int) float64 { return (x(c)*x(c) - y(c)*y(c)) * z(c) },
	func(c [3]int) float64 { return 3*sq(c)*sq(c) - 6*sq(c) + 1 },
	func(c [3]int) float64 { return (2*sq(c) - 3) * (3*x(c)*x(c) - sq(c)) },
	func(c [3]int) float64 { return (2*sq(c) - 3) * (y(c)*y(c) - z(c)*z(c)) },
}

var d3q19Kinds = []MomentKind{
	Conserved, Conserved, Conserved, Conserved,
	Bulk,
	Shear, Shear, Shear, Shear, Shear,
	Ghost, Ghost, Ghost, Ghost, Ghost, Ghost, Ghost, Ghost, Ghost,
}

func x(c [3]int) float64  { return float64(c[0]) }
func y(c [3]int) float64  { return float64(c[1]) }
func z(c [3]int) float64  { return float64(c[2]) }
func sq(c [3]int) float64 { return x(c)*x(c) + y(c)*y(c) + z(c)*z(c) }

var d3q19 = sync.OnceValues(func() (*VelocitySet, error) {
	return NewVelocitySet("D3Q19", d3q19Dirs, d3q19Weights(), d3q19Basis, d3q19Kinds)
})

// D3Q19 returns the process-wide D3Q19 velocity set. It is built on first use and
// shared read-only afterwards.
func D3Q19() *VelocitySet {
	vs, err := d3q19()
	if err != nil {
		panic(fmt.Sprintf("lattice: compiled-in D3Q19 table is inconsistent: %v", err))
	}
	return vs
}

// ByName returns a compiled-in velocity set.
func ByName(name string) (*VelocitySet, error) {
	switch name {
	case "", "D3Q19", "d3q19":
		return d3q19()
	}
	return nil, fmt.Errorf("%w: unknown lattice %q (available: [D3Q19])", ErrInvalidVelocitySet, name)
}
