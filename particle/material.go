package particle

import "fmt"

// Type identifies a sand material. It indexes into a profile table and is
// stable across runs, so it is safe to persist.
type Type uint8

const (
	Normal Type = iota
	Heavy
	Light
	Bouncy
	Viscous
	Explosive

	TypeCount = 6
)

var typeNames = [TypeCount]string{
	"normal", "heavy", "light", "bouncy", "viscous", "explosive",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// TypeFromName resolves a material name as used in config files.
func TypeFromName(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return Normal, fmt.Errorf("unknown material %q", name)
}

// Color is a normalized RGB triple used by the renderer for billboard tint.
type Color struct {
	R float32 `yaml:"r"`
	G float32 `yaml:"g"`
	B float32 `yaml:"b"`
}

// Profile holds the per-material physical parameters.
type Profile struct {
	Mass         float32 `yaml:"mass"`
	Friction     float32 `yaml:"friction"`
	Restitution  float32 `yaml:"restitution"`
	Cohesion     float32 `yaml:"cohesion"`
	Viscosity    float32 `yaml:"viscosity"`
	GravityScale float32 `yaml:"gravity_scale"`
	Radius       float32 `yaml:"radius"`
	Color        Color   `yaml:"color"`
}

// Validate checks a single profile for values the solvers can handle.
func (p Profile) Validate() error {
	if p.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %v", p.Mass)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", p.Radius)
	}
	if p.Friction < 0 || p.Restitution < 0 || p.Cohesion < 0 || p.Viscosity < 0 {
		return fmt.Errorf("friction, restitution, cohesion and viscosity must be non-negative")
	}
	if p.Restitution > 1 {
		return fmt.Errorf("restitution must not exceed 1, got %v", p.Restitution)
	}
	return nil
}

// Profiles maps every material type to its profile.
type Profiles [TypeCount]Profile

// DefaultProfiles returns the built-in material table.
func DefaultProfiles() Profiles {
	return Profiles{
		Normal: {
			Mass: 1.0, Friction: 0.4, Restitution: 0.1,
			GravityScale: 1.0, Radius: 0.5,
			Color: Color{0.96, 0.87, 0.70},
		},
		Heavy: {
			Mass: 3.0, Friction: 0.6, Restitution: 0.05,
			Cohesion: 0.1, Viscosity: 0.1,
			GravityScale: 1.5, Radius: 0.6,
			Color: Color{0.4, 0.35, 0.3},
		},
		Light: {
			Mass: 0.3, Friction: 0.2, Restitution: 0.3,
			GravityScale: 0.5, Radius: 0.4,
			Color: Color{1.0, 0.98, 0.9},
		},
		Bouncy: {
			Mass: 0.8, Friction: 0.2, Restitution: 0.8,
			GravityScale: 1.0, Radius: 0.5,
			Color: Color{0.2, 0.8, 0.4},
		},
		Viscous: {
			Mass: 1.5, Friction: 0.8, Restitution: 0.0,
			Cohesion: 0.5, Viscosity: 0.7,
			GravityScale: 0.8, Radius: 0.55,
			Color: Color{0.6, 0.3, 0.1},
		},
		Explosive: {
			Mass: 1.0, Friction: 0.3, Restitution: 0.5,
			GravityScale: 1.0, Radius: 0.45,
			Color: Color{1.0, 0.3, 0.1},
		},
	}
}

// Validate checks every profile in the table.
func (ps Profiles) Validate() error {
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("material %s: %w", Type(i), err)
		}
	}
	return nil
}

// MaxRadius returns the largest particle radius across all materials. The
// spatial grid derives its cell size from it.
func (ps Profiles) MaxRadius() float32 {
	max := float32(0)
	for _, p := range ps {
		if p.Radius > max {
			max = p.Radius
		}
	}
	return max
}

// CohesionRadius is the interaction range for same-type attraction,
// proportional to the particle size.
func (p Profile) CohesionRadius() float32 {
	return 4 * p.Radius
}
