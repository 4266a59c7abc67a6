// Package lattice holds the discrete-velocity model shared by every kernel:
// the velocity set with its moment basis, the equilibrium distribution, and the
// MRT relaxation table.
//
// A VelocitySet is immutable once constructed. Kernels running on many goroutines
// read it concurrently without synchronization.
package lattice

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxQ bounds the number of discrete velocities any supported set may carry.
// Kernels size their stack scratch with it.
const MaxQ = 27

// ErrInvalidVelocitySet is returned when a velocity table violates a lattice invariant.
var ErrInvalidVelocitySet = errors.New("invalid velocity set")

// validationTol bounds the floating-point slack allowed when checking invariants.
const validationTol = 1e-12

// MomentKind classifies a row of the moment basis by how collision treats it.
type MomentKind int

const (
	// Conserved moments (density, momentum) are never relaxed or perturbed.
	Conserved MomentKind = iota
	// Bulk is the trace of the stress, relaxed with the bulk relaxation time.
	Bulk
	// Shear moments are the traceless stress, relaxed with tau.
	Shear
	// Ghost moments carry no hydrodynamic content.
	Ghost
)

// String returns the lower-case kind name.
func (k MomentKind) String() string {
	switch k {
	case Conserved:
		return "conserved"
	case Bulk:
		return "bulk"
	case Shear:
		return "shear"
	case Ghost:
		return "ghost"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// BasisFunc evaluates one moment polynomial at a lattice direction.
type BasisFunc func(c [3]int) float64

// VelocitySet is a discrete-velocity lattice model together with its moment basis.
type VelocitySet struct {
	name  string
	q     int
	c     [][3]int
	cf    [][3]float64
	w     []float64
	cs2   float64
	kinds []MomentKind
	m     []float64 // row-major Q×Q, moments = m · f
	mInv  []float64 // row-major Q×Q, f = mInv · moments
	norms []float64 // b_k = Σ_i w_i m_ki²
}

// NewVelocitySet builds and validates a velocity set.
//
// The first direction must be the rest direction, weights must be positive and sum
// to one, the first and second lattice moments of the weights must be isotropic,
// and basis rows 0..3 must be the conserved moments 1, cx, cy, cz. The basis must be
// invertible. Any violation returns an error wrapping ErrInvalidVelocitySet.
func NewVelocitySet(name string, dirs [][3]int, weights []float64, basis []BasisFunc, kinds []MomentKind) (*VelocitySet, error) {
	q := len(dirs)
	if q < 4 || q > MaxQ {
		return nil, fmt.Errorf("%w: %s has %d directions (want 4..%d)", ErrInvalidVelocitySet, name, q, MaxQ)
	}
	if len(weights) != q || len(basis) != q || len(kinds) != q {
		return nil, fmt.Errorf("%w: %s table sizes differ (dirs=%d weights=%d basis=%d kinds=%d)",
			ErrInvalidVelocitySet, name, q, len(weights), len(basis), len(kinds))
	}
	if dirs[0] != [3]int{} {
		return nil, fmt.Errorf("%w: %s direction 0 is %v, want rest direction", ErrInvalidVelocitySet, name, dirs[0])
	}

	vs := &VelocitySet{
		name:  name,
		q:     q,
		c:     append([][3]int(nil), dirs...),
		cf:    make([][3]float64, q),
		w:     append([]float64(nil), weights...),
		kinds: append([]MomentKind(nil), kinds...),
	}
	for i, c := range dirs {
		vs.cf[i] = [3]float64{float64(c[0]), float64(c[1]), float64(c[2])}
	}

	if err := vs.checkWeights(); err != nil {
		return nil, err
	}
	if err := vs.buildBasis(basis); err != nil {
		return nil, err
	}
	return vs, nil
}

// checkWeights verifies Σw = 1, Σw c = 0 and Σw c⊗c = cs² I, and sets cs2.
func (vs *VelocitySet) checkWeights() error {
	var sum float64
	var first [3]float64
	var second [3][3]float64
	for i, w := range vs.w {
		if !(w > 0) {
			return fmt.Errorf("%w: %s weight %d is %v", ErrInvalidVelocitySet, vs.name, i, w)
		}
		sum += w
		for a := 0; a < 3; a++ {
			first[a] += w * vs.cf[i][a]
			for b := 0; b < 3; b++ {
				second[a][b] += w * vs.cf[i][a] * vs.cf[i][b]
			}
		}
	}
	if math.Abs(sum-1) > validationTol {
		return fmt.Errorf("%w: %s weights sum to %v", ErrInvalidVelocitySet, vs.name, sum)
	}
	for a := 0; a < 3; a++ {
		if math.Abs(first[a]) > validationTol {
			return fmt.Errorf("%w: %s first moment of weights is %v", ErrInvalidVelocitySet, vs.name, first)
		}
	}
	cs2 := second[0][0]
	if !(cs2 > 0) {
		return fmt.Errorf("%w: %s has non-positive sound speed squared %v", ErrInvalidVelocitySet, vs.name, cs2)
	}
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			want := 0.0
			if a == b {
				want = cs2
			}
			if math.Abs(second[a][b]-want) > validationTol {
				return fmt.Errorf("%w: %s second moment of weights is not isotropic: %v",
					ErrInvalidVelocitySet, vs.name, second)
			}
		}
	}
	vs.cs2 = cs2
	return nil
}

// buildBasis evaluates the basis on the lattice, checks the conserved rows, and
// inverts the resulting matrix.
func (vs *VelocitySet) buildBasis(basis []BasisFunc) error {
	q := vs.q
	vs.m = make([]float64, q*q)
	for k, fn := range basis {
		if fn == nil {
			return fmt.Errorf("%w: %s basis row %d is nil", ErrInvalidVelocitySet, vs.name, k)
		}
		for i, c := range vs.c {
			vs.m[k*q+i] = fn(c)
		}
	}

	for k, kind := range vs.kinds {
		if (k < 4) != (kind == Conserved) {
			return fmt.Errorf("%w: %s basis row %d has kind %s; rows 0..3 and only those must be conserved",
				ErrInvalidVelocitySet, vs.name, k, kind)
		}
	}
	for i := range vs.c {
		want := [4]float64{1, vs.cf[i][0], vs.cf[i][1], vs.cf[i][2]}
		for k := 0; k < 4; k++ {
			if vs.m[k*q+i] != want[k] {
				return fmt.Errorf("%w: %s basis row %d is not the conserved moment at direction %d",
					ErrInvalidVelocitySet, vs.name, k, i)
			}
		}
	}

	fwd := mat.NewDense(q, q, append([]float64(nil), vs.m...))
	var inv mat.Dense
	if err := inv.Inverse(fwd); err != nil {
		return fmt.Errorf("%w: %s moment basis is not invertible: %v", ErrInvalidVelocitySet, vs.name, err)
	}
	var prod mat.Dense
	prod.Mul(fwd, &inv)
	if !mat.EqualApprox(&prod, identity(q), 1e-10) {
		return fmt.Errorf("%w: %s moment basis inverse is inaccurate", ErrInvalidVelocitySet, vs.name)
	}
	vs.mInv = make([]float64, q*q)
	for r := 0; r < q; r++ {
		for c := 0; c < q; c++ {
			vs.mInv[r*q+c] = inv.At(r, c)
		}
	}

	vs.norms = make([]float64, q)
	for k := 0; k < q; k++ {
		for i, w := range vs.w {
			v := vs.m[k*q+i]
			vs.norms[k] += w * v * v
		}
	}
	return nil
}

func identity(n int) *mat.DiagDense {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return mat.NewDiagDense(n, d)
}

// Name returns the lattice model name, e.g. "D3Q19".
func (vs *VelocitySet) Name() string { return vs.name }

// Q returns the number of discrete velocities.
func (vs *VelocitySet) Q() int { return vs.q }

// Direction returns the integer lattice step of direction i.
func (vs *VelocitySet) Direction(i int) [3]int { return vs.c[i] }

// Weight returns the lattice weight of direction i.
func (vs *VelocitySet) Weight(i int) float64 { return vs.w[i] }

// CS2 returns the lattice sound speed squared.
func (vs *VelocitySet) CS2() float64 { return vs.cs2 }

// Kind returns the classification of moment k.
func (vs *VelocitySet) Kind(k int) MomentKind { return vs.kinds[k] }

// Norm returns b_k = Σ_i w_i M_ki², the weighted squared norm of basis row k.
func (vs *VelocitySet) Norm(k int) float64 { return vs.norms[k] }

// Basis returns a copy of the moment matrix as a gonum dense matrix.
func (vs *VelocitySet) Basis() *mat.Dense {
	return mat.NewDense(vs.q, vs.q, append([]float64(nil), vs.m...))
}

// ToMoments writes M·f into dst. dst and f must not overlap.
func (vs *VelocitySet) ToMoments(dst, f []float64) {
	mulQ(dst, vs.m, f, vs.q)
}

// ToPopulations writes M⁻¹·m into dst. dst and m must not overlap.
func (vs *VelocitySet) ToPopulations(dst, m []float64) {
	mulQ(dst, vs.mInv, m, vs.q)
}

func mulQ(dst, a, x []float64, q int) {
	x = x[:q]
	for r := 0; r < q; r++ {
		row := a[r*q : (r+1)*q]
		var s float64
		for i, v := range x {
			s += row[i] * v
		}
		dst[r] = s
	}
}
