package structfact

import "math"

// Spectrum is a time-averaged structure factor. Values[p][i] is the average for
// pair Pairs[p] at FFT index i (x-fastest, unshifted).
type Spectrum struct {
	Dims   [3]int
	Names  []string
	Pairs  [][2]int
	Values [][]complex128
	Count  int
}

// PairName returns the "a*b" label of pair p.
func (s *Spectrum) PairName(p int) string {
	pr := s.Pairs[p]
	return s.Names[pr[0]] + "*" + s.Names[pr[1]]
}

// At returns the value of pair p at signed wavenumber (kx, ky, kz).
func (s *Spectrum) At(p, kx, ky, kz int) complex128 {
	i := wrapIndex(kx, s.Dims[0]) + s.Dims[0]*(wrapIndex(ky, s.Dims[1])+s.Dims[1]*wrapIndex(kz, s.Dims[2]))
	return s.Values[p][i]
}

func wrapIndex(k, n int) int {
	r := k % n
	if r < 0 {
		r += n
	}
	return r
}

// Shifted returns pair p reordered so that k = 0 sits at index (n/2, n/2, n/2).
// Shifted index j on an axis of length n holds wavenumber j − n/2.
func (s *Spectrum) Shifted(p int) []complex128 {
	nx, ny, nz := s.Dims[0], s.Dims[1], s.Dims[2]
	src := s.Values[p]
	dst := make([]complex128, len(src))
	for iz := 0; iz < nz; iz++ {
		jz := (iz + nz/2) % nz
		for iy := 0; iy < ny; iy++ {
			jy := (iy + ny/2) % ny
			for ix := 0; ix < nx; ix++ {
				jx := (ix + nx/2) % nx
				dst[jx+nx*(jy+ny*jz)] = src[ix+nx*(iy+ny*iz)]
			}
		}
	}
	return dst
}

// ShellAverage returns the real part of pair p averaged over spherical shells of
// integer |k| (rounded). Entry m covers round(|k|) = m; empty shells are zero.
func (s *Spectrum) ShellAverage(p int) []float64 {
	nx, ny, nz := s.Dims[0], s.Dims[1], s.Dims[2]
	kmax := math.Sqrt(float64(sq(nx/2) + sq(ny/2) + sq(nz/2)))
	nshell := int(math.Round(kmax)) + 1
	sums := make([]float64, nshell)
	counts := make([]int, nshell)

	vals := s.Values[p]
	for iz := 0; iz < nz; iz++ {
		kz := Wavenumber(iz, nz)
		for iy := 0; iy < ny; iy++ {
			ky := Wavenumber(iy, ny)
			for ix := 0; ix < nx; ix++ {
				kx := Wavenumber(ix, nx)
				shell := int(math.Round(math.Sqrt(float64(kx*kx + ky*ky + kz*kz))))
				sums[shell] += real(vals[ix+nx*(iy+ny*iz)])
				counts[shell]++
			}
		}
	}
	for m := range sums {
		if counts[m] > 0 {
			sums[m] /= float64(counts[m])
		}
	}
	return sums
}

func sq(v int) int { return v * v }
