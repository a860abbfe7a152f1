package camera

import (
	"math"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.Distance != DefaultDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, float32(DefaultDistance))
	}
	if c.YawDeg != DefaultYawDeg || c.PitchDeg != DefaultPitchDeg {
		t.Errorf("angles = (%v, %v), want (%v, %v)", c.YawDeg, c.PitchDeg,
			float32(DefaultYawDeg), float32(DefaultPitchDeg))
	}
	if c.Target.Y != 10 {
		t.Errorf("Target.Y = %v, want 10", c.Target.Y)
	}
}

func TestOrbitWrapsYaw(t *testing.T) {
	c := New()
	c.Orbit(350, 0)
	if c.YawDeg < 0 || c.YawDeg >= 360 {
		t.Errorf("YawDeg = %v, want wrapped into [0, 360)", c.YawDeg)
	}
	c.Orbit(-720, 0)
	if c.YawDeg < 0 || c.YawDeg >= 360 {
		t.Errorf("YawDeg = %v after negative orbit, want wrapped", c.YawDeg)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	c := New()
	c.Orbit(0, -500)
	if c.PitchDeg != -maxPitchDeg {
		t.Errorf("PitchDeg = %v, want clamped to %v", c.PitchDeg, float32(-maxPitchDeg))
	}
	c.Orbit(0, 1000)
	if c.PitchDeg != maxPitchDeg {
		t.Errorf("PitchDeg = %v, want clamped to %v", c.PitchDeg, float32(maxPitchDeg))
	}
}

func TestZoomClamps(t *testing.T) {
	c := New()
	c.ZoomBy(1000)
	if c.Distance != minDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, float32(minDistance))
	}
	c.ZoomBy(-1000)
	if c.Distance != maxDistance {
		t.Errorf("Distance = %v, want %v", c.Distance, float32(maxDistance))
	}
}

func TestPositionRespectsDistance(t *testing.T) {
	c := New()
	for _, yaw := range []float32{0, 45, 90, 180, 270} {
		c.Reset()
		c.Orbit(yaw-DefaultYawDeg, 0)
		pos := c.Position()
		d := pos.Sub(c.Target).Length()
		if math.Abs(float64(d-c.Distance)) > 1e-3 {
			t.Errorf("yaw %v: |pos-target| = %v, want %v", yaw, d, c.Distance)
		}
	}
}

func TestPositionAbovePitchedTarget(t *testing.T) {
	c := New()
	// Negative pitch means looking down, so the camera sits above the
	// target.
	if pos := c.Position(); pos.Y <= c.Target.Y {
		t.Errorf("Pos.Y = %v, want above target %v", pos.Y, c.Target.Y)
	}
}

func TestResetAfterMoves(t *testing.T) {
	c := New()
	c.Orbit(90, 20)
	c.ZoomBy(30)
	c.Pan(100, -50)
	c.Reset()

	d := New()
	if *c != *d {
		t.Errorf("Reset state %+v differs from fresh camera %+v", *c, *d)
	}
}
