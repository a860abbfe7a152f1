// Package camera provides an orbit camera for viewing the simulation
// volume. It is pure math so it can be tested without a window.
package camera

import (
	"math"

	"github.com/Starland9/sand-simulation/particle"
)

// Default view: pulled back far enough to frame the whole box, looking
// down at its center from a front-right angle.
const (
	DefaultDistance = 60
	DefaultYawDeg   = 45
	DefaultPitchDeg = -30

	minDistance = 5
	maxDistance = 150
	// Pitch stops short of the poles to keep the view basis stable.
	maxPitchDeg = 89
)

// Camera orbits a target point at a distance, described by yaw and pitch
// angles in degrees.
type Camera struct {
	Target   particle.Vec3
	Distance float32
	YawDeg   float32
	PitchDeg float32
}

// New creates a camera with the default framing.
func New() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default framing.
func (c *Camera) Reset() {
	c.Target = particle.V3(0, 10, 0)
	c.Distance = DefaultDistance
	c.YawDeg = DefaultYawDeg
	c.PitchDeg = DefaultPitchDeg
}

// Orbit rotates the view around the target.
func (c *Camera) Orbit(dYawDeg, dPitchDeg float32) {
	c.YawDeg += dYawDeg
	for c.YawDeg >= 360 {
		c.YawDeg -= 360
	}
	for c.YawDeg < 0 {
		c.YawDeg += 360
	}
	c.PitchDeg = clamp(c.PitchDeg+dPitchDeg, -maxPitchDeg, maxPitchDeg)
}

// ZoomBy moves the camera along the view ray. Positive amounts zoom in.
func (c *Camera) ZoomBy(amount float32) {
	c.Distance = clamp(c.Distance-amount, minDistance, maxDistance)
}

// Pan slides the target in the camera's screen plane.
func (c *Camera) Pan(dx, dy float32) {
	yaw := radians(c.YawDeg)
	// Right vector lies in the horizontal plane; up is world up, which
	// reads naturally when orbiting a box.
	rightX := float32(math.Cos(float64(yaw)))
	rightZ := -float32(math.Sin(float64(yaw)))

	scale := c.Distance * 0.002
	c.Target.X += rightX * dx * scale
	c.Target.Z += rightZ * dx * scale
	c.Target.Y += dy * scale
}

// Position returns the camera's world position.
func (c *Camera) Position() particle.Vec3 {
	yaw := float64(radians(c.YawDeg))
	pitch := float64(radians(c.PitchDeg))

	horiz := float64(c.Distance) * math.Cos(pitch)
	return particle.V3(
		c.Target.X+float32(horiz*math.Sin(yaw)),
		c.Target.Y-float32(float64(c.Distance)*math.Sin(pitch)),
		c.Target.Z+float32(horiz*math.Cos(yaw)),
	)
}

func radians(deg float32) float32 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
