package systems

import (
	"math"
	"testing"

	"github.com/Starland9/sand-simulation/particle"
)

const dt60 = float32(1.0 / 60.0)

func TestIntegrateSemiImplicit(t *testing.T) {
	// Position must advance with the already-updated velocity.
	st := newTestStore(particle.V3(0, 10, 0))
	profiles := particle.DefaultProfiles()
	params := DefaultParams()

	Integrate(st, &profiles, &params, dt60)

	p := st.At(0)
	wantVel := float32(-9.81) * dt60
	if math.Abs(float64(p.Vel.Y-wantVel)) > 1e-6 {
		t.Errorf("Vel.Y = %v, want %v", p.Vel.Y, wantVel)
	}
	wantPos := 10 + wantVel*dt60
	if math.Abs(float64(p.Pos.Y-wantPos)) > 1e-6 {
		t.Errorf("Pos.Y = %v, want %v", p.Pos.Y, wantPos)
	}
}

func TestIntegrateMaterialGravityScale(t *testing.T) {
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	st.Spawn(particle.Normal, profiles[particle.Normal], particle.V3(0, 10, 0), particle.Vec3{})
	st.Spawn(particle.Light, profiles[particle.Light], particle.V3(2, 10, 0), particle.Vec3{})
	params := DefaultParams()

	Integrate(st, &profiles, &params, dt60)

	normal := st.At(0).Vel.Y
	light := st.At(1).Vel.Y
	want := normal * profiles[particle.Light].GravityScale
	if math.Abs(float64(light-want)) > 1e-6 {
		t.Errorf("light Vel.Y = %v, want %v (gravity scale %v)", light, want, profiles[particle.Light].GravityScale)
	}
}

func TestIntegrateViscosityNeverReverses(t *testing.T) {
	st := particle.NewStore(8, particle.DropNew)
	profiles := particle.DefaultProfiles()
	profiles[particle.Viscous].Viscosity = 5
	st.Spawn(particle.Viscous, profiles[particle.Viscous], particle.V3(0, 10, 0), particle.V3(3, 0, 0))
	params := DefaultParams()
	params.Gravity = particle.Vec3{}

	// dt large enough that naive damping would flip the sign.
	Integrate(st, &profiles, &params, 0.5)

	if st.At(0).Vel.X < 0 {
		t.Errorf("Vel.X = %v, damping must not reverse direction", st.At(0).Vel.X)
	}
}

func TestIntegrateRangeMatchesSerial(t *testing.T) {
	mk := func() *particle.Store {
		st := particle.NewStore(64, particle.DropNew)
		prof := particle.DefaultProfiles()[particle.Normal]
		for i := 0; i < 50; i++ {
			st.Spawn(particle.Normal, prof,
				particle.V3(float32(i)*0.3, 10+float32(i%7), 0),
				particle.V3(float32(i%3)-1, 0, 0))
		}
		return st
	}
	profiles := particle.DefaultProfiles()
	params := DefaultParams()

	serial := mk()
	Integrate(serial, &profiles, &params, dt60)

	chunked := mk()
	IntegrateRange(chunked, &profiles, &params, dt60, 0, 17)
	IntegrateRange(chunked, &profiles, &params, dt60, 17, 40)
	IntegrateRange(chunked, &profiles, &params, dt60, 40, chunked.Size())

	for i := 0; i < serial.Size(); i++ {
		if *serial.At(i) != *chunked.At(i) {
			t.Fatalf("particle %d differs between serial and chunked integration", i)
		}
	}
}
