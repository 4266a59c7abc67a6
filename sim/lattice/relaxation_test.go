package lattice

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRelaxation_EigenvalueTable(t *testing.T) {
	vs := D3Q19()
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.8})
	require.NoError(t, err)

	p := r.Params()
	assert.Equal(t, 0.8, p.TauBulk, "bulk defaults to tau")
	assert.Equal(t, 1.0, p.TauGhost, "ghost defaults to 1")

	for k := 0; k < vs.Q(); k++ {
		switch vs.Kind(k) {
		case Conserved:
			assert.Equal(t, 1.0, r.Eigenvalue(k), "moment %d", k)
		case Bulk, Shear:
			assert.InDelta(t, 1-1/0.8, r.Eigenvalue(k), 1e-15, "moment %d", k)
		case Ghost:
			assert.Equal(t, 0.0, r.Eigenvalue(k), "moment %d", k)
		}
		assert.Equal(t, 0.0, r.NoiseAmplitude(k), "no noise at T=0")
	}
	assert.False(t, r.Thermal())
}

func TestNewRelaxation_RejectsBadParams(t *testing.T) {
	tests := []struct {
		name string
		p    RelaxationParams
	}{
		{"zero tau", RelaxationParams{Tau: 0}},
		{"negative tau", RelaxationParams{Tau: -1}},
		{"nan tau", RelaxationParams{Tau: math.NaN()}},
		{"negative bulk", RelaxationParams{Tau: 1, TauBulk: -1}},
		{"negative ghost", RelaxationParams{Tau: 1, TauGhost: -0.5}},
		{"negative temperature", RelaxationParams{Tau: 1, Temperature: -1e-5}},
		{"infinite temperature", RelaxationParams{Tau: 1, Temperature: math.Inf(1)}},
		{"thermal shear tau at half", RelaxationParams{Tau: 0.5, Temperature: 1e-4}},
		{"thermal shear tau below half", RelaxationParams{Tau: 0.4, Temperature: 1e-4}},
		{"thermal bulk tau below half", RelaxationParams{Tau: 1, TauBulk: 0.45, Temperature: 1e-4}},
		{"thermal ghost tau below half", RelaxationParams{Tau: 1, TauGhost: 0.3, Temperature: 1e-4}},
		{"thermal default bulk inherits low tau", RelaxationParams{Tau: 0.3, TauGhost: 1, Temperature: 1e-4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRelaxation(D3Q19(), tt.p)
			assert.Error(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestNewRelaxation_LowTauAllowedWithoutNoise(t *testing.T) {
	// GIVEN over-relaxed rates on a deterministic run
	vs := D3Q19()
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.45, TauBulk: 0.4, TauGhost: 0.3})

	// THEN the table builds and carries no noise
	require.NoError(t, err)
	assert.False(t, r.Thermal())
	for k := 0; k < vs.Q(); k++ {
		assert.Zero(t, r.NoiseAmplitude(k), "moment %d", k)
		assert.False(t, math.IsNaN(r.Eigenvalue(k)), "moment %d", k)
	}
}

func TestNewRelaxation_ThermalAmplitudesAreFinite(t *testing.T) {
	vs := D3Q19()
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.51, TauBulk: 0.6, TauGhost: 0.55, Temperature: 1e-4})
	require.NoError(t, err)
	for k := 0; k < vs.Q(); k++ {
		sigma := r.NoiseAmplitude(k)
		assert.False(t, math.IsNaN(sigma) || math.IsInf(sigma, 0), "moment %d", k)
		if vs.Kind(k) != Conserved {
			assert.Greater(t, sigma, 0.0, "moment %d", k)
		}
	}
}

func TestRelaxation_UnitRateCollapsesToEquilibrium(t *testing.T) {
	// GIVEN tau = 1 so every non-conserved moment relaxes at rate 1
	vs := D3Q19()
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 1})
	require.NoError(t, err)

	f := make([]float64, vs.Q())
	for i := range f {
		f[i] = vs.Weight(i) * (1 + 0.1*float64(i%5))
	}
	m := make([]float64, vs.Q())
	vs.ToMoments(m, f)
	rho, u := vs.Hydro(f)
	meq := make([]float64, vs.Q())
	vs.EquilibriumMoments(meq, rho, u)

	// WHEN collided
	r.Collide(m, meq, rho, nil)

	// THEN the populations equal the BGK equilibrium
	got := make([]float64, vs.Q())
	vs.ToPopulations(got, m)
	want := make([]float64, vs.Q())
	vs.Equilibrium(want, rho, u)
	assert.InDeltaSlice(t, want, got, 1e-14)
}

func TestRelaxation_ThermalNoiseLeavesConservedMomentsAlone(t *testing.T) {
	vs := D3Q19()
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.7, Temperature: 1e-4})
	require.NoError(t, err)
	require.True(t, r.Thermal())

	m := make([]float64, vs.Q())
	meq := make([]float64, vs.Q())
	vs.EquilibriumMoments(meq, 1, [3]float64{0.01, 0, 0})
	copy(m, meq)

	r.Collide(m, meq, 1, rand.New(rand.NewPCG(3, 4)))

	for k := 0; k < 4; k++ {
		assert.Equal(t, meq[k], m[k], "conserved moment %d perturbed", k)
	}
	perturbed := 0
	for k := 4; k < vs.Q(); k++ {
		if m[k] != meq[k] {
			perturbed++
		}
	}
	assert.Equal(t, vs.Q()-4, perturbed)
}

func TestRelaxation_NoiseAmplitudeIsFluctuationDissipationConsistent(t *testing.T) {
	// The stationary variance of a relaxed moment, σ²/(1−λ²), must equal T b_k / cs².
	vs := D3Q19()
	T := 2.5e-5
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.9, TauBulk: 1.3, TauGhost: 1.1, Temperature: T})
	require.NoError(t, err)

	for k := 4; k < vs.Q(); k++ {
		l := r.Eigenvalue(k)
		s := r.NoiseAmplitude(k)
		assert.InDelta(t, T*vs.Norm(k)/vs.CS2(), s*s/(1-l*l), 1e-18, "moment %d", k)
	}
}

func TestRelaxation_StationaryVarianceMatchesEquipartition(t *testing.T) {
	// GIVEN a single moment iterated through relax+noise many times
	vs := D3Q19()
	T := 1e-4
	r, err := NewRelaxation(vs, RelaxationParams{Tau: 0.8, Temperature: T})
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(11, 12))

	m := make([]float64, vs.Q())
	meq := make([]float64, vs.Q())
	const k = 7 // shear mode ρ ux uy
	const n = 200000
	var sum2 float64
	for i := 0; i < n; i++ {
		r.Collide(m, meq, 1, rng)
		sum2 += m[k] * m[k]
	}

	// THEN its variance converges to ρ T b_k / cs²
	want := T * vs.Norm(k) / vs.CS2()
	assert.InEpsilon(t, want, sum2/n, 0.05)
}
