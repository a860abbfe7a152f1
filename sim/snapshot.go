// Package sim wires the per-substep passes into a deterministic engine
// with frame-boundary commands and read-safe state snapshots.
package sim

import "github.com/Starland9/sand-simulation/particle"

// ParticleView is the render-facing copy of one particle.
type ParticleView struct {
	ID     uint32
	Pos    particle.Vec3
	Vel    particle.Vec3
	Type   particle.Type
	Radius float32
}

// Snapshot is an immutable copy of the visible simulation state taken at
// a frame boundary. Mid-substep state is never published.
type Snapshot struct {
	Tick      uint64
	Time      float64
	Playing   bool
	EmitterOn bool
	BoundsMin particle.Vec3
	BoundsMax particle.Vec3
	Particles []ParticleView
}

// CopyInto deep-copies the snapshot into dst, reusing dst's particle
// slice when it has capacity.
func (s *Snapshot) CopyInto(dst *Snapshot) {
	particles := dst.Particles[:0]
	*dst = *s
	dst.Particles = append(particles, s.Particles...)
}
