package lattice

// Equilibrium writes the second-order equilibrium populations for density rho and
// velocity u into dst:
//
//	f_i = w_i ρ (1 + c_i·u/cs² + (c_i·u)²/(2cs⁴) − u·u/(2cs²))
func (vs *VelocitySet) Equilibrium(dst []float64, rho float64, u [3]float64) {
	inv := 1 / vs.cs2
	usq := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
	for i, c := range vs.cf {
		cu := c[0]*u[0] + c[1]*u[1] + c[2]*u[2]
		dst[i] = vs.w[i] * rho * (1 + cu*inv + 0.5*cu*cu*inv*inv - 0.5*usq*inv)
	}
}

// EquilibriumMoments writes M·f_eq(rho, u) into dst.
//
// For D3Q19 this is ρ, ρu, ρu², ρ(2ux²−uy²−uz²), ρ(uy²−uz²), ρuxuy, ρuyuz, ρuzux
// followed by zero ghost moments.
func (vs *VelocitySet) EquilibriumMoments(dst []float64, rho float64, u [3]float64) {
	var feq [MaxQ]float64
	vs.Equilibrium(feq[:vs.q], rho, u)
	vs.ToMoments(dst, feq[:vs.q])
}

// Hydro reduces a population vector to density and velocity.
// A zero density yields non-finite velocity components; callers decide the policy.
func (vs *VelocitySet) Hydro(f []float64) (rho float64, u [3]float64) {
	var j [3]float64
	for i, fi := range f[:vs.q] {
		rho += fi
		c := vs.cf[i]
		j[0] += fi * c[0]
		j[1] += fi * c[1]
		j[2] += fi * c[2]
	}
	u = [3]float64{j[0] / rho, j[1] / rho, j[2] / rho}
	return rho, u
}
