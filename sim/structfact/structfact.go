// Package structfact accumulates the equal-time structure factor of fluctuating
// fields: the time average of F_a(k)·conj(F_b(k)) over every pair of tracked
// variables, where F is the spatial Fourier transform over the periodic domain.
//
// Sums are accumulated online, one sample per call, so no field history is kept.
// An Accumulator is bound to one domain size for its lifetime.
package structfact

import (
	"fmt"
	"math/cmplx"
)

// Accumulator holds running structure-factor sums. It is not safe for concurrent use.
type Accumulator struct {
	dims    [3]int
	n       int
	names   []string
	scaling []float64
	pairs   [][2]int
	sums    [][]complex128
	count   int

	xf     *transform3
	coeffs [][]complex128
}

// New creates an accumulator for variables named names on a grid of size dims.
// scaling holds one weight per upper-triangular pair (including the diagonal) in
// row-major order: (0,0), (0,1), …, (0,n−1), (1,1), …
func New(dims [3]int, names []string, scaling []float64) (*Accumulator, error) {
	nv := len(names)
	if nv == 0 {
		return nil, fmt.Errorf("structure factor needs at least one variable")
	}
	if want := nv * (nv + 1) / 2; len(scaling) != want {
		return nil, fmt.Errorf("structure factor scaling has %d entries, want %d for %d variables",
			len(scaling), want, nv)
	}
	xf, err := newTransform3(dims)
	if err != nil {
		return nil, fmt.Errorf("structure factor: %w", err)
	}

	a := &Accumulator{
		dims:    dims,
		n:       xf.n,
		names:   append([]string(nil), names...),
		scaling: append([]float64(nil), scaling...),
		xf:      xf,
		coeffs:  make([][]complex128, nv),
	}
	for i := 0; i < nv; i++ {
		for j := i; j < nv; j++ {
			a.pairs = append(a.pairs, [2]int{i, j})
		}
	}
	a.sums = make([][]complex128, len(a.pairs))
	for p := range a.sums {
		a.sums[p] = make([]complex128, a.n)
	}
	for v := range a.coeffs {
		a.coeffs[v] = make([]complex128, a.n)
	}
	return a, nil
}

// UnitScaling returns an all-ones scaling vector for nv variables.
func UnitScaling(nv int) []float64 {
	s := make([]float64, nv*(nv+1)/2)
	for i := range s {
		s[i] = 1
	}
	return s
}

// Accumulate adds one sample. fields holds one x-fastest scalar field per variable.
func (a *Accumulator) Accumulate(fields [][]float64) error {
	if len(fields) != len(a.names) {
		return fmt.Errorf("accumulate: got %d fields, want %d", len(fields), len(a.names))
	}
	for v, f := range fields {
		if len(f) != a.n {
			return fmt.Errorf("accumulate: field %s has %d values, want %d", a.names[v], len(f), a.n)
		}
	}

	for v, f := range fields {
		a.xf.forward(a.coeffs[v], f)
	}
	for p, pr := range a.pairs {
		fa, fb := a.coeffs[pr[0]], a.coeffs[pr[1]]
		scale := complex(a.scaling[p], 0)
		sum := a.sums[p]
		for k := range sum {
			sum[k] += scale * fa[k] * cmplx.Conj(fb[k])
		}
	}
	a.count++
	return nil
}

// Snapshot returns the time-averaged structure factor. It does not modify the
// accumulator. With no samples every value is zero.
func (a *Accumulator) Snapshot() *Spectrum {
	s := &Spectrum{
		Dims:   a.dims,
		Names:  append([]string(nil), a.names...),
		Pairs:  append([][2]int(nil), a.pairs...),
		Values: make([][]complex128, len(a.pairs)),
		Count:  a.count,
	}
	inv := complex(0, 0)
	if a.count > 0 {
		inv = complex(1/float64(a.count), 0)
	}
	for p, sum := range a.sums {
		vals := make([]complex128, a.n)
		if a.count > 0 {
			for k, v := range sum {
				vals[k] = v * inv
			}
		}
		s.Values[p] = vals
	}
	return s
}

// Reset zeroes the sums and the sample counter.
func (a *Accumulator) Reset() {
	for _, sum := range a.sums {
		for k := range sum {
			sum[k] = 0
		}
	}
	a.count = 0
}

// Count returns the number of accumulated samples.
func (a *Accumulator) Count() int { return a.count }

// Dims returns the grid size the accumulator is bound to.
func (a *Accumulator) Dims() [3]int { return a.dims }

// Names returns the tracked variable names.
func (a *Accumulator) Names() []string { return append([]string(nil), a.names...) }

// PairNames returns "a*b" labels for every tracked pair.
func (a *Accumulator) PairNames() []string {
	out := make([]string, len(a.pairs))
	for p, pr := range a.pairs {
		out[p] = a.names[pr[0]] + "*" + a.names[pr[1]]
	}
	return out
}
