package lattice

import (
	"fmt"
	"math"
)

// RelaxationParams selects the MRT eigenvalues and the noise temperature.
// Zero TauBulk defaults to Tau; zero TauGhost defaults to 1 (ghost moments are
// reset to equilibrium every step).
type RelaxationParams struct {
	Tau         float64 // shear relaxation time; kinematic viscosity is cs²(τ − ½)
	TauBulk     float64 // bulk relaxation time (0 = Tau)
	TauGhost    float64 // ghost relaxation time (0 = 1)
	Temperature float64 // thermal noise temperature (0 = deterministic)
}

// Normal draws standard normal variates. *rand.Rand satisfies it.
type Normal interface {
	NormFloat64() float64
}

// Relaxation is the per-moment collision table derived from RelaxationParams.
//
// Post-collision moments are m*_k = meq_k + λ_k (m_k − meq_k) + sqrt(ρ)·σ_k·ξ with
// ξ ~ N(0,1) and σ_k² = T b_k (1 − λ_k²) / cs², which keeps the stationary moment
// variance at ρ T b_k / cs².
type Relaxation struct {
	params RelaxationParams
	q      int
	kinds  []MomentKind
	lambda []float64
	sigma  []float64
}

// NewRelaxation builds the relaxation table for vs. With Temperature > 0 every
// resolved relaxation time must exceed ½.
func NewRelaxation(vs *VelocitySet, p RelaxationParams) (*Relaxation, error) {
	if !(p.Tau > 0) {
		return nil, fmt.Errorf("relaxation time tau must be positive, got %v", p.Tau)
	}
	if p.TauBulk < 0 || math.IsNaN(p.TauBulk) {
		return nil, fmt.Errorf("bulk relaxation time must be positive, got %v", p.TauBulk)
	}
	if p.TauGhost < 0 || math.IsNaN(p.TauGhost) {
		return nil, fmt.Errorf("ghost relaxation time must be positive, got %v", p.TauGhost)
	}
	if p.Temperature < 0 || math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) {
		return nil, fmt.Errorf("temperature must be finite and non-negative, got %v", p.Temperature)
	}
	if p.TauBulk == 0 {
		p.TauBulk = p.Tau
	}
	if p.TauGhost == 0 {
		p.TauGhost = 1
	}
	if p.Temperature > 0 {
		// |λ| ≥ 1 leaves no room for a real noise amplitude.
		for _, rt := range []struct {
			name string
			tau  float64
		}{{"tau", p.Tau}, {"tau_bulk", p.TauBulk}, {"tau_ghost", p.TauGhost}} {
			if rt.tau <= 0.5 {
				return nil, fmt.Errorf("thermal noise needs %s > 0.5, got %v", rt.name, rt.tau)
			}
		}
	}

	q := vs.Q()
	r := &Relaxation{
		params: p,
		q:      q,
		kinds:  vs.kinds,
		lambda: make([]float64, q),
		sigma:  make([]float64, q),
	}
	for k := 0; k < q; k++ {
		var tau float64
		switch vs.Kind(k) {
		case Conserved:
			r.lambda[k] = 1
			continue
		case Bulk:
			tau = p.TauBulk
		case Shear:
			tau = p.Tau
		default:
			tau = p.TauGhost
		}
		l := 1 - 1/tau
		r.lambda[k] = l
		if p.Temperature > 0 {
			r.sigma[k] = math.Sqrt(p.Temperature * vs.Norm(k) * (1 - l*l) / vs.CS2())
		}
	}
	return r, nil
}

// Params returns the resolved parameters (defaults applied).
func (r *Relaxation) Params() RelaxationParams { return r.params }

// Eigenvalue returns λ_k, the fraction of the non-equilibrium part of moment k
// that survives one collision. The relaxation rate is 1 − λ_k.
func (r *Relaxation) Eigenvalue(k int) float64 { return r.lambda[k] }

// NoiseAmplitude returns σ_k; the applied perturbation is sqrt(ρ)·σ_k·ξ.
func (r *Relaxation) NoiseAmplitude(k int) float64 { return r.sigma[k] }

// Thermal reports whether collisions inject noise.
func (r *Relaxation) Thermal() bool { return r.params.Temperature > 0 }

// Collide relaxes m toward meq in place. noise may be nil when the table is not thermal.
func (r *Relaxation) Collide(m, meq []float64, rho float64, noise Normal) {
	thermal := r.Thermal() && noise != nil
	amp := 0.0
	if thermal {
		// A non-positive density has no meaningful fluctuation scale.
		amp = math.Sqrt(math.Max(rho, 0))
	}
	for k := 0; k < r.q; k++ {
		if r.kinds[k] == Conserved {
			continue
		}
		m[k] = meq[k] + r.lambda[k]*(m[k]-meq[k])
		if thermal {
			m[k] += amp * r.sigma[k] * noise.NormFloat64()
		}
	}
}
