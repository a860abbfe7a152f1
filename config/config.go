// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/Starland9/sand-simulation/particle"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig              `yaml:"screen"`
	Physics   PhysicsConfig             `yaml:"physics"`
	World     WorldConfig               `yaml:"world"`
	Particles ParticlesConfig           `yaml:"particles"`
	Emitter   EmitterConfig             `yaml:"emitter"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
	Materials map[string]MaterialConfig `yaml:"materials"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// Vec3Config is a 3-component vector as it appears in YAML.
type Vec3Config struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Vec3 converts to the simulation vector type.
func (v Vec3Config) Vec3() particle.Vec3 { return particle.V3(v.X, v.Y, v.Z) }

// PhysicsConfig holds the global simulation parameters.
type PhysicsConfig struct {
	DT               float64    `yaml:"dt"`
	Substeps         int        `yaml:"substeps"`
	Gravity          Vec3Config `yaml:"gravity"`
	GravityScale     float32    `yaml:"gravity_scale"`
	Friction         float32    `yaml:"friction"`
	Restitution      float32    `yaml:"restitution"`
	EnableCollisions bool       `yaml:"enable_collisions"`
	EnableCohesion   bool       `yaml:"enable_cohesion"`
}

// WorldConfig holds the axis-aligned simulation bounds.
type WorldConfig struct {
	Min Vec3Config `yaml:"min"`
	Max Vec3Config `yaml:"max"`
}

// ParticlesConfig holds store capacity settings.
type ParticlesConfig struct {
	Max            int    `yaml:"max"`
	CapacityPolicy string `yaml:"capacity_policy"` // "drop" or "recycle"
}

// Policy parses the capacity policy name.
func (p ParticlesConfig) Policy() (particle.CapacityPolicy, error) {
	switch p.CapacityPolicy {
	case "drop", "":
		return particle.DropNew, nil
	case "recycle":
		return particle.RecycleOldest, nil
	default:
		return particle.DropNew, fmt.Errorf("unknown capacity policy %q", p.CapacityPolicy)
	}
}

// EmitterConfig holds the continuous emitter settings.
type EmitterConfig struct {
	Enabled    bool       `yaml:"enabled"`
	Rate       float32    `yaml:"rate"`
	Material   string     `yaml:"material"`
	Position   Vec3Config `yaml:"position"`
	Spread     float32    `yaml:"spread"`
	Velocity   Vec3Config `yaml:"velocity"`
	BurstCount int        `yaml:"burst_count"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
	PerfWindow  int     `yaml:"perf_window"`
	LogStats    bool    `yaml:"log_stats"`
}

// MaterialConfig is a partial per-material override. Nil fields keep the
// built-in default for that material.
type MaterialConfig struct {
	Mass         *float32        `yaml:"mass,omitempty"`
	Friction     *float32        `yaml:"friction,omitempty"`
	Restitution  *float32        `yaml:"restitution,omitempty"`
	Cohesion     *float32        `yaml:"cohesion,omitempty"`
	Viscosity    *float32        `yaml:"viscosity,omitempty"`
	GravityScale *float32        `yaml:"gravity_scale,omitempty"`
	Radius       *float32        `yaml:"radius,omitempty"`
	Color        *particle.Color `yaml:"color,omitempty"`
}

func (m MaterialConfig) applyTo(p *particle.Profile) {
	if m.Mass != nil {
		p.Mass = *m.Mass
	}
	if m.Friction != nil {
		p.Friction = *m.Friction
	}
	if m.Restitution != nil {
		p.Restitution = *m.Restitution
	}
	if m.Cohesion != nil {
		p.Cohesion = *m.Cohesion
	}
	if m.Viscosity != nil {
		p.Viscosity = *m.Viscosity
	}
	if m.GravityScale != nil {
		p.GravityScale = *m.GravityScale
	}
	if m.Radius != nil {
		p.Radius = *m.Radius
	}
	if m.Color != nil {
		p.Color = *m.Color
	}
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the simulation cannot run
// with.
func (c *Config) Validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Physics.Substeps < 1 {
		return fmt.Errorf("physics.substeps must be at least 1, got %d", c.Physics.Substeps)
	}
	if c.Physics.GravityScale < 0 || c.Physics.Friction < 0 || c.Physics.Restitution < 0 {
		return fmt.Errorf("physics multipliers must be non-negative")
	}
	min, max := c.World.Min, c.World.Max
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return fmt.Errorf("world bounds min must be strictly below max on every axis")
	}
	if c.Particles.Max < 1 {
		return fmt.Errorf("particles.max must be at least 1, got %d", c.Particles.Max)
	}
	if _, err := c.Particles.Policy(); err != nil {
		return err
	}
	if c.Emitter.Rate < 0 {
		return fmt.Errorf("emitter.rate must be non-negative, got %v", c.Emitter.Rate)
	}
	if c.Emitter.Spread < 0 {
		return fmt.Errorf("emitter.spread must be non-negative, got %v", c.Emitter.Spread)
	}
	if c.Emitter.BurstCount < 0 {
		return fmt.Errorf("emitter.burst_count must be non-negative, got %d", c.Emitter.BurstCount)
	}
	if c.Emitter.Material != "" {
		if _, err := particle.TypeFromName(c.Emitter.Material); err != nil {
			return fmt.Errorf("emitter: %w", err)
		}
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("telemetry.stats_window must be positive, got %v", c.Telemetry.StatsWindow)
	}
	for name := range c.Materials {
		if _, err := particle.TypeFromName(name); err != nil {
			return err
		}
	}
	if _, err := c.Profiles(); err != nil {
		return err
	}
	return nil
}

// Profiles builds the material table: built-in defaults with the config
// overrides applied, then validated as a whole.
func (c *Config) Profiles() (particle.Profiles, error) {
	ps := particle.DefaultProfiles()
	for name, over := range c.Materials {
		t, err := particle.TypeFromName(name)
		if err != nil {
			return ps, err
		}
		over.applyTo(&ps[t])
	}
	if err := ps.Validate(); err != nil {
		return ps, err
	}
	return ps, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
