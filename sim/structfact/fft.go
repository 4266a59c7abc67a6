package structfact

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// transform3 is a separable 3-D complex FFT over an x-fastest periodic grid,
// normalized by 1/sqrt(N) so that Σ|F(k)|² = Σ|f(x)|².
type transform3 struct {
	dims   [3]int
	n      int
	ffts   [3]*fourier.CmplxFFT
	line   []complex128
	coeffs []complex128
}

func newTransform3(dims [3]int) (*transform3, error) {
	for a, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("transform dimension %d must be positive, got %d", a, d)
		}
	}
	t := &transform3{dims: dims, n: dims[0] * dims[1] * dims[2]}
	longest := 0
	for a, d := range dims {
		t.ffts[a] = fourier.NewCmplxFFT(d)
		longest = max(longest, d)
	}
	t.line = make([]complex128, longest)
	t.coeffs = make([]complex128, longest)
	return t, nil
}

// forward writes the normalized transform of the real field into dst.
func (t *transform3) forward(dst []complex128, field []float64) {
	for i, v := range field {
		dst[i] = complex(v, 0)
	}
	strides := [3]int{1, t.dims[0], t.dims[0] * t.dims[1]}
	for a := 0; a < 3; a++ {
		na := t.dims[a]
		if na == 1 {
			continue
		}
		stride := strides[a]
		line := t.line[:na]
		coeffs := t.coeffs[:na]
		for base := 0; base < t.n; base++ {
			if (base/stride)%na != 0 {
				continue
			}
			for j := range line {
				line[j] = dst[base+j*stride]
			}
			t.ffts[a].Coefficients(coeffs, line)
			for j, c := range coeffs {
				dst[base+j*stride] = c
			}
		}
	}
	norm := complex(1/math.Sqrt(float64(t.n)), 0)
	for i := range dst[:t.n] {
		dst[i] *= norm
	}
}

// Transform returns the normalized 3-D discrete Fourier transform of an
// x-fastest real field with the given dimensions.
func Transform(dims [3]int, field []float64) ([]complex128, error) {
	t, err := newTransform3(dims)
	if err != nil {
		return nil, err
	}
	if len(field) != t.n {
		return nil, fmt.Errorf("field has %d values, want %d", len(field), t.n)
	}
	dst := make([]complex128, t.n)
	t.forward(dst, field)
	return dst, nil
}

// Wavenumber returns the signed integer wavenumber of FFT index i on an axis of
// length n, following the usual 0, 1, …, −2, −1 ordering.
func Wavenumber(i, n int) int {
	if i < (n+1)/2 {
		return i
	}
	return i - n
}
