package systems

import (
	"fmt"

	"github.com/Starland9/sand-simulation/particle"
)

// Params are the global simulation parameters shared by every pass. They
// change only between frames.
type Params struct {
	Gravity          particle.Vec3
	GravityScale     float32
	Friction         float32
	Restitution      float32
	Substeps         int
	BoundsMin        particle.Vec3
	BoundsMax        particle.Vec3
	EnableCollisions bool
	EnableCohesion   bool
	MaxParticles     int
	CapacityPolicy   particle.CapacityPolicy
}

// DefaultParams mirrors the embedded configuration defaults.
func DefaultParams() Params {
	return Params{
		Gravity:          particle.V3(0, -9.81, 0),
		GravityScale:     1,
		Friction:         1,
		Restitution:      1,
		Substeps:         2,
		BoundsMin:        particle.V3(-25, 0, -25),
		BoundsMax:        particle.V3(25, 50, 25),
		EnableCollisions: true,
		EnableCohesion:   true,
		MaxParticles:     5000,
		CapacityPolicy:   particle.DropNew,
	}
}

// Validate rejects parameter sets the solvers cannot run with.
func (p Params) Validate() error {
	if !p.Gravity.IsFinite() {
		return fmt.Errorf("gravity must be finite")
	}
	if p.GravityScale < 0 || p.Friction < 0 || p.Restitution < 0 {
		return fmt.Errorf("gravity scale, friction and restitution must be non-negative")
	}
	if p.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d", p.Substeps)
	}
	if p.BoundsMin.X >= p.BoundsMax.X || p.BoundsMin.Y >= p.BoundsMax.Y || p.BoundsMin.Z >= p.BoundsMax.Z {
		return fmt.Errorf("bounds min must be strictly below max on every axis")
	}
	if p.MaxParticles < 1 {
		return fmt.Errorf("max particles must be at least 1, got %d", p.MaxParticles)
	}
	return nil
}
