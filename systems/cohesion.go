package systems

import "github.com/Starland9/sand-simulation/particle"

// cohesionDriftCap bounds how far, in particle radii, the attraction may
// move a particle over one substep. Half a radius keeps the induced
// overlap within what the next resolution pass removes.
const cohesionDriftCap = 0.5

// minCohesionDist keeps the attraction bounded for near-coincident pairs.
const minCohesionDist = 0.1

// CohesionRange applies same-material attraction for store indices in
// [lo, hi). Each particle pulls itself toward nearby particles of its own
// type; the pull fades linearly from full strength at contact to zero at
// four radii, and the resulting speed change is clamped so one substep of
// drift never exceeds half the particle radius. Only the particle's own
// velocity is written and only
// positions are read, so disjoint ranges can run concurrently and the
// result does not depend on processing order within a substep.
//
// The query buffer must be private to the calling goroutine.
func CohesionRange(st *particle.Store, grid *Grid, profiles *particle.Profiles, dt float32, lo, hi int, queryBuf []int) []int {
	for i := lo; i < hi; i++ {
		p := st.At(i)
		if !p.Alive {
			continue
		}
		prof := &profiles[p.Type]
		if prof.Cohesion <= 0 {
			continue
		}
		radius := prof.CohesionRadius()

		queryBuf = queryBuf[:0]
		queryBuf = grid.QueryInto(queryBuf, p.Pos, radius)

		var pull particle.Vec3
		for _, j := range queryBuf {
			if j == i {
				continue
			}
			o := st.At(j)
			if !o.Alive || o.Type != p.Type {
				continue
			}
			delta := o.Pos.Sub(p.Pos)
			dist := delta.Length()
			if dist >= radius {
				continue
			}
			if dist < minCohesionDist {
				dist = minCohesionDist
			}
			strength := prof.Cohesion * (1 - dist/radius)
			pull = pull.Add(delta.Scale(strength / dist))
		}
		nudge := pull.Scale(dt)
		maxNudge := cohesionDriftCap * prof.Radius / dt
		if l := nudge.Length(); l > maxNudge {
			nudge = nudge.Scale(maxNudge / l)
		}
		p.Vel = p.Vel.Add(nudge)
	}
	return queryBuf
}

// Cohesion applies the attraction pass serially over the whole store.
func Cohesion(st *particle.Store, grid *Grid, profiles *particle.Profiles, dt float32, queryBuf []int) []int {
	return CohesionRange(st, grid, profiles, dt, 0, st.Size(), queryBuf)
}
