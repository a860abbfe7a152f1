package systems

import (
	"math"
	"testing"

	"github.com/Starland9/sand-simulation/particle"
)

func TestBoundaryFloorBounce(t *testing.T) {
	// A particle driven through the floor with downward speed v must come
	// back with speed v * restitution.
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	profiles[particle.Normal].Restitution = 0.5
	profiles[particle.Normal].Friction = 0
	prof := profiles[particle.Normal]
	st.Spawn(particle.Normal, prof, particle.V3(0, -0.2, 0), particle.V3(0, -4, 0))

	params := DefaultParams()
	c := NewCollider()
	c.Boundary(st, &profiles, &params)

	p := st.At(0)
	if p.Pos.Y != prof.Radius {
		t.Errorf("Pos.Y = %v, want clamped to radius %v", p.Pos.Y, prof.Radius)
	}
	if math.Abs(float64(p.Vel.Y-2)) > 1e-6 {
		t.Errorf("Vel.Y = %v, want 2 (reflected at restitution 0.5)", p.Vel.Y)
	}
}

func TestBoundaryFrictionDampsTangential(t *testing.T) {
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	profiles[particle.Normal].Friction = 0.4
	st.Spawn(particle.Normal, profiles[particle.Normal], particle.V3(0, -1, 0), particle.V3(3, -2, 1))

	params := DefaultParams()
	c := NewCollider()
	c.Boundary(st, &profiles, &params)

	p := st.At(0)
	if math.Abs(float64(p.Vel.X-3*0.6)) > 1e-6 || math.Abs(float64(p.Vel.Z-1*0.6)) > 1e-6 {
		t.Errorf("tangential velocity = (%v, %v), want scaled by 0.6", p.Vel.X, p.Vel.Z)
	}
}

func TestBoundaryInsideUntouched(t *testing.T) {
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	st.Spawn(particle.Normal, profiles[particle.Normal], particle.V3(0, 25, 0), particle.V3(1, 2, 3))

	params := DefaultParams()
	c := NewCollider()
	if hits := c.Boundary(st, &profiles, &params); hits != 0 {
		t.Fatalf("hits = %d, want 0", hits)
	}
	p := st.At(0)
	if p.Vel != particle.V3(1, 2, 3) {
		t.Errorf("velocity changed with no wall contact: %+v", p.Vel)
	}
}

func pairFixture(posA, posB, velA, velB particle.Vec3) (*particle.Store, *Grid) {
	st := particle.NewStore(8, particle.DropNew)
	prof := particle.DefaultProfiles()[particle.Normal]
	st.Spawn(particle.Normal, prof, posA, velA)
	st.Spawn(particle.Normal, prof, posB, velB)
	g := NewGrid(particle.V3(-25, 0, -25), particle.V3(25, 50, 25), 1.2)
	g.Rebuild(st)
	return st, g
}

func TestPairSeparationEqualMass(t *testing.T) {
	// Overlapping equal-mass particles at rest must be pushed apart
	// symmetrically until they no longer overlap.
	st, g := pairFixture(
		particle.V3(-0.3, 10, 0), particle.V3(0.3, 10, 0),
		particle.Vec3{}, particle.Vec3{})
	profiles := particle.DefaultProfiles()
	params := DefaultParams()

	c := NewCollider()
	if contacts := c.ResolvePairs(st, g, &profiles, &params); contacts != 1 {
		t.Fatalf("contacts = %d, want 1", contacts)
	}

	a, b := st.At(0), st.At(1)
	moveA := float64(-0.3 - a.Pos.X)
	moveB := float64(b.Pos.X - 0.3)
	if math.Abs(moveA-moveB) > 1e-5 {
		t.Errorf("asymmetric separation: a moved %v, b moved %v", moveA, moveB)
	}
	dist := b.Pos.Sub(a.Pos).Length()
	if dist < a.Radius+b.Radius-1e-4 {
		t.Errorf("still overlapping after resolution: dist = %v", dist)
	}
}

func TestPairFullOverlapResolvedInOnePass(t *testing.T) {
	// Each unordered pair is visited exactly once, so a single pass must
	// remove the whole overlap. Two unit-radius particles at distance 1.5
	// end up at least a diameter apart.
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	profiles[particle.Normal].Radius = 1
	prof := profiles[particle.Normal]
	st.Spawn(particle.Normal, prof, particle.V3(-0.75, 10, 0), particle.Vec3{})
	st.Spawn(particle.Normal, prof, particle.V3(0.75, 10, 0), particle.Vec3{})
	g := NewGrid(particle.V3(-25, 0, -25), particle.V3(25, 50, 25), 2)
	g.Rebuild(st)
	params := DefaultParams()

	if contacts := NewCollider().ResolvePairs(st, g, &profiles, &params); contacts != 1 {
		t.Fatalf("contacts = %d, want 1", contacts)
	}

	dist := st.At(1).Pos.Sub(st.At(0).Pos).Length()
	if dist < 2-1e-4 {
		t.Errorf("distance after one pass = %v, want >= 2", dist)
	}
}

func TestPairImpulseApproachingOnly(t *testing.T) {
	// Separating pair: positions corrected, velocities untouched.
	st, g := pairFixture(
		particle.V3(-0.3, 10, 0), particle.V3(0.3, 10, 0),
		particle.V3(-1, 0, 0), particle.V3(1, 0, 0))
	profiles := particle.DefaultProfiles()
	params := DefaultParams()

	NewCollider().ResolvePairs(st, g, &profiles, &params)
	if st.At(0).Vel.X != -1 || st.At(1).Vel.X != 1 {
		t.Errorf("separating pair got an impulse: %v, %v", st.At(0).Vel, st.At(1).Vel)
	}
}

func TestPairHeadOnImpulse(t *testing.T) {
	st, g := pairFixture(
		particle.V3(-0.4, 10, 0), particle.V3(0.4, 10, 0),
		particle.V3(2, 0, 0), particle.V3(-2, 0, 0))
	profiles := particle.DefaultProfiles()
	profiles[particle.Normal].Friction = 0
	params := DefaultParams()

	NewCollider().ResolvePairs(st, g, &profiles, &params)

	a, b := st.At(0), st.At(1)
	if a.Vel.X >= 0 || b.Vel.X <= 0 {
		t.Errorf("head-on collision did not reverse approach: a=%v b=%v", a.Vel.X, b.Vel.X)
	}
	// Equal masses and a symmetric approach keep the momentum at zero.
	if math.Abs(float64(a.Vel.X+b.Vel.X)) > 1e-5 {
		t.Errorf("momentum not conserved: a=%v b=%v", a.Vel.X, b.Vel.X)
	}
}

func TestPairCoincidentSeparatesDeterministically(t *testing.T) {
	st, g := pairFixture(
		particle.V3(0, 10, 0), particle.V3(0, 10, 0),
		particle.Vec3{}, particle.Vec3{})
	profiles := particle.DefaultProfiles()
	params := DefaultParams()

	NewCollider().ResolvePairs(st, g, &profiles, &params)

	a, b := st.At(0), st.At(1)
	if !(a.Pos.X < 0 && b.Pos.X > 0) {
		t.Errorf("coincident pair not split on the fallback axis: a=%v b=%v", a.Pos, b.Pos)
	}
	if a.Pos.Y != 10 || b.Pos.Y != 10 || a.Pos.Z != 0 || b.Pos.Z != 0 {
		t.Errorf("fallback separation leaked into other axes: a=%v b=%v", a.Pos, b.Pos)
	}
}

func TestQuarantineRemovesNonFinite(t *testing.T) {
	st := particle.NewStore(8, particle.DropNew)
	prof := particle.DefaultProfiles()[particle.Normal]
	st.Spawn(particle.Normal, prof, particle.V3(0, 10, 0), particle.Vec3{})
	st.Spawn(particle.Normal, prof, particle.V3(1, 10, 0), particle.Vec3{})
	st.Spawn(particle.Normal, prof, particle.V3(2, 10, 0), particle.Vec3{})

	nan := float32(math.NaN())
	st.At(1).Pos.X = nan
	st.At(2).Vel.Z = float32(math.Inf(1))

	c := NewCollider()
	if removed := c.Quarantine(st); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if st.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", st.Len())
	}
	if !st.At(0).Alive || st.At(0).Pos.X != 0 {
		t.Error("healthy particle was removed")
	}
}
