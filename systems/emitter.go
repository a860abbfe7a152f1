package systems

import (
	"math/rand"

	"github.com/Starland9/sand-simulation/particle"
)

// SpawnRequest describes one particle the engine should add to the store.
type SpawnRequest struct {
	Type particle.Type
	Pos  particle.Vec3
	Vel  particle.Vec3
}

// Emitter produces a continuous stream of particles at a configured rate.
// Fractional particles are carried over between frames, so over a long run
// the emitted count tracks rate*time to within one particle.
type Emitter struct {
	Enabled  bool
	Rate     float32 // particles per second
	Material particle.Type
	Position particle.Vec3
	Spread   float32 // half-extent of the uniform spawn cube
	Velocity particle.Vec3

	carry float32
}

// Tick returns the spawn requests for a frame of length dt, appended to
// dst.
func (e *Emitter) Tick(dst []SpawnRequest, dt float32, rng *rand.Rand) []SpawnRequest {
	if !e.Enabled || e.Rate <= 0 {
		return dst
	}
	e.carry += e.Rate * dt
	n := int(e.carry)
	e.carry -= float32(n)
	for i := 0; i < n; i++ {
		dst = append(dst, e.spawnOne(rng))
	}
	return dst
}

// Burst emits count particles at once, regardless of rate or enablement.
func (e *Emitter) Burst(dst []SpawnRequest, count int, rng *rand.Rand) []SpawnRequest {
	for i := 0; i < count; i++ {
		dst = append(dst, e.spawnOne(rng))
	}
	return dst
}

// ResetCarry drops the fractional remainder. Called on simulation reset.
func (e *Emitter) ResetCarry() { e.carry = 0 }

func (e *Emitter) spawnOne(rng *rand.Rand) SpawnRequest {
	// Uniform cube spread around the emitter position, velocity jitter of
	// up to one unit per axis.
	pos := particle.V3(
		e.Position.X+uniform(rng, -e.Spread, e.Spread),
		e.Position.Y+uniform(rng, -e.Spread, e.Spread),
		e.Position.Z+uniform(rng, -e.Spread, e.Spread),
	)
	vel := particle.V3(
		e.Velocity.X+uniform(rng, -1, 1),
		e.Velocity.Y+uniform(rng, -1, 1),
		e.Velocity.Z+uniform(rng, -1, 1),
	)
	return SpawnRequest{Type: e.Material, Pos: pos, Vel: vel}
}

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
