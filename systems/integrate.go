package systems

import "github.com/Starland9/sand-simulation/particle"

// IntegrateRange advances velocities and positions for store indices in
// [lo, hi) using semi-implicit Euler: velocity first, then position with
// the updated velocity. Each particle depends only on its own state, so
// disjoint ranges can be integrated concurrently.
func IntegrateRange(st *particle.Store, profiles *particle.Profiles, params *Params, dt float32, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := st.At(i)
		if !p.Alive {
			continue
		}
		prof := &profiles[p.Type]

		gs := params.GravityScale * prof.GravityScale
		p.Vel.X += params.Gravity.X * gs * dt
		p.Vel.Y += params.Gravity.Y * gs * dt
		p.Vel.Z += params.Gravity.Z * gs * dt

		// Viscous drag, clamped so large dt cannot reverse the velocity.
		if prof.Viscosity > 0 {
			damp := 1 - prof.Viscosity*dt
			if damp < 0 {
				damp = 0
			}
			p.Vel = p.Vel.Scale(damp)
		}

		p.Pos.X += p.Vel.X * dt
		p.Pos.Y += p.Vel.Y * dt
		p.Pos.Z += p.Vel.Z * dt
	}
}

// Integrate advances every particle serially.
func Integrate(st *particle.Store, profiles *particle.Profiles, params *Params, dt float32) {
	IntegrateRange(st, profiles, params, dt, 0, st.Size())
}
