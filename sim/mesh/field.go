package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrNotPeriodic is returned when a halo exchange needs data across a
// non-periodic domain face. Only periodic domains are supported.
var ErrNotPeriodic = errors.New("halo exchange requires a periodic domain")

// Field stores ncomp float64 values per cell over a box padded by nghost ghost
// layers. Components of one cell are contiguous.
type Field struct {
	valid  Box
	grown  Box
	ncomp  int
	nghost int
	sx, sy int
	data   []float64
}

// NewField allocates a zeroed field over domain.
func NewField(domain Box, ncomp, nghost int) (*Field, error) {
	if !domain.Ok() {
		return nil, fmt.Errorf("allocate field: empty domain %v", domain)
	}
	if ncomp <= 0 {
		return nil, fmt.Errorf("allocate field: component count must be positive, got %d", ncomp)
	}
	if nghost < 0 {
		return nil, fmt.Errorf("allocate field: ghost width must be non-negative, got %d", nghost)
	}
	grown := domain.Grow(nghost)
	s := grown.Size()
	return &Field{
		valid:  domain,
		grown:  grown,
		ncomp:  ncomp,
		nghost: nghost,
		sx:     s[0],
		sy:     s[1],
		data:   make([]float64, grown.NumPts()*ncomp),
	}, nil
}

// ValidBox returns the interior box.
func (f *Field) ValidBox() Box { return f.valid }

// GrownBox returns the interior box padded by the ghost layers.
func (f *Field) GrownBox() Box { return f.grown }

// NComp returns the number of components per cell.
func (f *Field) NComp() int { return f.ncomp }

// NGhost returns the ghost layer width.
func (f *Field) NGhost() int { return f.nghost }

func (f *Field) offset(x, y, z int) int {
	i := ((z-f.grown.Lo[2])*f.sy+(y-f.grown.Lo[1]))*f.sx + (x - f.grown.Lo[0])
	return i * f.ncomp
}

// Cell returns the component vector of cell (x, y, z). The slice aliases field
// storage. (x, y, z) must lie in the grown box.
func (f *Field) Cell(x, y, z int) []float64 {
	o := f.offset(x, y, z)
	return f.data[o : o+f.ncomp : o+f.ncomp]
}

// At returns component c of cell (x, y, z).
func (f *Field) At(x, y, z, c int) float64 {
	return f.data[f.offset(x, y, z)+c]
}

// Set stores v as component c of cell (x, y, z).
func (f *Field) Set(x, y, z, c int, v float64) {
	f.data[f.offset(x, y, z)+c] = v
}

// SetVal sets every component of every cell, ghosts included, to v.
func (f *Field) SetVal(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// FillBoundary copies periodic images of interior cells into every ghost cell.
func (f *Field) FillBoundary(geom Geometry) error {
	if f.nghost == 0 {
		return nil
	}
	if geom.Domain != f.valid {
		return fmt.Errorf("fill boundary: geometry domain %v does not match field %v", geom.Domain, f.valid)
	}
	if !geom.AllPeriodic() {
		return fmt.Errorf("fill boundary on %v: %w", geom.Periodic, ErrNotPeriodic)
	}
	g := f.grown
	for z := g.Lo[2]; z <= g.Hi[2]; z++ {
		for y := g.Lo[1]; y <= g.Hi[1]; y++ {
			for x := g.Lo[0]; x <= g.Hi[0]; x++ {
				if f.valid.Contains(x, y, z) {
					continue
				}
				src := geom.Wrap([3]int{x, y, z})
				copy(f.Cell(x, y, z), f.Cell(src[0], src[1], src[2]))
			}
		}
	}
	return nil
}

// Component copies component c of every interior cell into dst in x-fastest order
// and returns it. dst is reallocated if too short.
func (f *Field) Component(c int, dst []float64) []float64 {
	n := f.valid.NumPts()
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	v := f.valid
	i := 0
	for z := v.Lo[2]; z <= v.Hi[2]; z++ {
		for y := v.Lo[1]; y <= v.Hi[1]; y++ {
			o := f.offset(v.Lo[0], y, z) + c
			for x := v.Lo[0]; x <= v.Hi[0]; x++ {
				dst[i] = f.data[o]
				o += f.ncomp
				i++
			}
		}
	}
	return dst
}

// Sum returns the sum of component c over interior cells.
func (f *Field) Sum(c int) float64 {
	return floats.Sum(f.Component(c, nil))
}

// SumAll returns the sum of all components over interior cells.
func (f *Field) SumAll() float64 {
	var total float64
	buf := make([]float64, 0, f.valid.NumPts())
	for c := 0; c < f.ncomp; c++ {
		buf = f.Component(c, buf)
		total += floats.Sum(buf)
	}
	return total
}
