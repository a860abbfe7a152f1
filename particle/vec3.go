package particle

import "math"

// Vec3 is a 3-component float32 vector. Simulation state stays in float32
// to keep the particle array compact and cache friendly.
type Vec3 struct {
	X, Y, Z float32
}

func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) LengthSq() float32 { return v.Dot(v) }

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalized returns the unit vector, or the zero vector when the length
// is too small to divide by safely.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-6 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}
