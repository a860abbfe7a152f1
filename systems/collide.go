package systems

import "github.com/Starland9/sand-simulation/particle"

// Collider resolves boundary and particle-particle contacts. It runs
// serially: pair impulses are applied in ascending index order (which is
// ascending ID order) so results are reproducible for a fixed input.
type Collider struct {
	queryBuf []int
}

func NewCollider() *Collider {
	return &Collider{queryBuf: make([]int, 0, 128)}
}

// Quarantine despawns every particle whose position or velocity has gone
// non-finite, and returns how many were removed. Run before any pass that
// reads positions so a corrupt particle cannot poison its neighbors.
func (c *Collider) Quarantine(st *particle.Store) int {
	removed := 0
	st.ForEachAlive(func(i int, p *particle.Particle) {
		if !p.Pos.IsFinite() || !p.Vel.IsFinite() {
			st.KillAt(i)
			removed++
		}
	})
	return removed
}

// Boundary clamps particles to the simulation box and reflects the
// velocity component normal to each wall hit. Tangential components are
// scaled down by the material friction. Returns the number of wall
// contacts.
func (c *Collider) Boundary(st *particle.Store, profiles *particle.Profiles, params *Params) int {
	hits := 0
	min, max := params.BoundsMin, params.BoundsMax
	st.ForEachAlive(func(i int, p *particle.Particle) {
		prof := &profiles[p.Type]
		rest := clamp01(prof.Restitution * params.Restitution)
		fric := clamp01(prof.Friction * params.Friction)
		keep := 1 - fric

		hit := false
		if bounceAxis(&p.Pos.X, &p.Vel.X, min.X+p.Radius, max.X-p.Radius, rest) {
			p.Vel.Y *= keep
			p.Vel.Z *= keep
			hit = true
		}
		if bounceAxis(&p.Pos.Y, &p.Vel.Y, min.Y+p.Radius, max.Y-p.Radius, rest) {
			p.Vel.X *= keep
			p.Vel.Z *= keep
			hit = true
		}
		if bounceAxis(&p.Pos.Z, &p.Vel.Z, min.Z+p.Radius, max.Z-p.Radius, rest) {
			p.Vel.X *= keep
			p.Vel.Y *= keep
			hit = true
		}
		if hit {
			hits++
		}
	})
	return hits
}

func bounceAxis(pos, vel *float32, lo, hi, rest float32) bool {
	if *pos < lo {
		*pos = lo
		*vel = -*vel * rest
		return true
	}
	if *pos > hi {
		*pos = hi
		*vel = -*vel * rest
		return true
	}
	return false
}

// ResolvePairs finds overlapping pairs through the grid and resolves each
// unordered pair exactly once, lower index first. Resolution separates the
// particles positionally in proportion to inverse mass and applies a
// restitution impulse plus a tangential friction impulse. Returns the
// number of contacts resolved.
func (c *Collider) ResolvePairs(st *particle.Store, grid *Grid, profiles *particle.Profiles, params *Params) int {
	contacts := 0
	n := st.Size()
	for i := 0; i < n; i++ {
		a := st.At(i)
		if !a.Alive {
			continue
		}
		profA := &profiles[a.Type]

		c.queryBuf = c.queryBuf[:0]
		c.queryBuf = grid.QueryInto(c.queryBuf, a.Pos, a.Radius+grid.CellSize())
		for _, j := range c.queryBuf {
			if j <= i {
				continue
			}
			b := st.At(j)
			if !b.Alive {
				continue
			}
			if resolveContact(a, b, profA, &profiles[b.Type], params) {
				contacts++
			}
		}
	}
	return contacts
}

func resolveContact(a, b *particle.Particle, profA, profB *particle.Profile, params *Params) bool {
	delta := b.Pos.Sub(a.Pos)
	distSq := delta.LengthSq()
	sum := a.Radius + b.Radius
	if distSq >= sum*sum {
		return false
	}

	var normal particle.Vec3
	var dist float32
	if distSq < 1e-8 {
		// Coincident centers give no direction; pick a fixed axis so the
		// outcome does not depend on float noise.
		normal = particle.V3(1, 0, 0)
		dist = 0
	} else {
		d := delta.Length()
		normal = delta.Scale(1 / d)
		dist = d
	}

	invA := 1 / a.Mass
	invB := 1 / b.Mass
	invSum := invA + invB

	// Positional correction: push apart along the normal, heavier particle
	// moves less. Each pair is visited once, so the full overlap is
	// distributed here.
	overlap := sum - dist
	corr := overlap / invSum
	a.Pos = a.Pos.Sub(normal.Scale(corr * invA))
	b.Pos = b.Pos.Add(normal.Scale(corr * invB))

	// Impulse only when the pair is still approaching.
	relVel := b.Vel.Sub(a.Vel)
	velN := relVel.Dot(normal)
	if velN >= 0 {
		return true
	}

	rest := clamp01((profA.Restitution + profB.Restitution) * 0.5 * params.Restitution)
	j := -(1 + rest) * velN / invSum
	impulse := normal.Scale(j)
	a.Vel = a.Vel.Sub(impulse.Scale(invA))
	b.Vel = b.Vel.Add(impulse.Scale(invB))

	// Friction along the tangential component of the relative velocity.
	fric := clamp01((profA.Friction + profB.Friction) * 0.5 * params.Friction)
	if fric > 0 {
		relVel = b.Vel.Sub(a.Vel)
		tangent := relVel.Sub(normal.Scale(relVel.Dot(normal)))
		tLen := tangent.Length()
		if tLen > 1e-6 {
			tDir := tangent.Scale(1 / tLen)
			jt := -fric * tLen / invSum
			frictionImpulse := tDir.Scale(jt)
			a.Vel = a.Vel.Sub(frictionImpulse.Scale(invA))
			b.Vel = b.Vel.Add(frictionImpulse.Scale(invB))
		}
	}
	return true
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
