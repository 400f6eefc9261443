// Package config loads the sandbox configuration from YAML and watches the
// file for edits.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/effect"
	"github.com/milk9111/soundbox/sim"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) Vector() cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

type Config struct {
	Playfield PlayfieldSpec `yaml:"playfield"`
	Physics   PhysicsSpec   `yaml:"physics"`
	Audio     AudioSpec     `yaml:"audio"`
	Effects   []EffectSpec  `yaml:"effects"`
	Bodies    []BodySpec    `yaml:"bodies"`
}

type PlayfieldSpec struct {
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	Walls          bool    `yaml:"walls"`
	WallFriction   float64 `yaml:"wall_friction"`
	WallElasticity float64 `yaml:"wall_elasticity"`
}

type PhysicsSpec struct {
	FixedStep   float64  `yaml:"fixed_step"`
	MaxSubSteps int      `yaml:"max_substeps"`
	Iterations  uint     `yaml:"iterations"`
	Gravity     Vec      `yaml:"gravity"`
	Wind        WindSpec `yaml:"wind"`
	TrailLength int      `yaml:"trail_length"`
}

// WindSpec direction is in radians, 0 along +x.
type WindSpec struct {
	Direction float64 `yaml:"direction"`
	Strength  float64 `yaml:"strength"`
}

type AudioSpec struct {
	Send         string        `yaml:"send"`
	Listen       string        `yaml:"listen"`
	SendTimeout  time.Duration `yaml:"send_timeout"`
	InboxCap     int           `yaml:"inbox_cap"`
	DrainPerTick int           `yaml:"drain_per_tick"`
	ImpactScale  float64       `yaml:"impact_scale"`
	Listener     ListenerSpec  `yaml:"listener"`
}

type ListenerSpec struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Radius    float64 `yaml:"radius"`
	NearRatio float64 `yaml:"near_ratio"`
}

// Load reads the configuration at path on top of the embedded defaults. An
// empty path, or a path that does not exist, yields the defaults alone.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	return Parse(defaultYAML)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

var (
	ErrInvalid     = errors.New("invalid config")
	ErrUnknownKind = errors.New("unknown effect kind")
)

// Validate reports every problem it finds, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}
	if c.Playfield.Width <= 0 || c.Playfield.Height <= 0 {
		bad("playfield %gx%g must be positive", c.Playfield.Width, c.Playfield.Height)
	}
	if c.Physics.FixedStep <= 0 {
		bad("physics.fixed_step %g must be positive", c.Physics.FixedStep)
	}
	if c.Physics.MaxSubSteps <= 0 {
		bad("physics.max_substeps %d must be positive", c.Physics.MaxSubSteps)
	}
	if c.Physics.TrailLength < 0 {
		bad("physics.trail_length %d must not be negative", c.Physics.TrailLength)
	}
	if c.Audio.InboxCap < 0 {
		bad("audio.inbox_cap %d must not be negative", c.Audio.InboxCap)
	}
	for i, e := range c.Effects {
		if _, err := e.Build(); err != nil {
			errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
		}
	}
	for i, b := range c.Bodies {
		if b.Mass <= 0 {
			bad("bodies[%d].mass %g must be positive", i, b.Mass)
		}
		if b.Count < 0 {
			bad("bodies[%d].count %d must not be negative", i, b.Count)
		}
		if b.Sound != nil && b.Sound.Type == "" {
			bad("bodies[%d].sound.type is required", i)
		}
	}
	return errors.Join(errs...)
}

// Sim converts the playfield, physics and audio sections into coordinator
// settings.
func (c *Config) Sim() sim.Config {
	return sim.Config{
		Width:             c.Playfield.Width,
		Height:            c.Playfield.Height,
		FixedStep:         c.Physics.FixedStep,
		MaxSubSteps:       c.Physics.MaxSubSteps,
		Iterations:        c.Physics.Iterations,
		Gravity:           c.Physics.Gravity.Vector(),
		WindDirection:     c.Physics.Wind.Direction,
		WindStrength:      c.Physics.Wind.Strength,
		TrailLength:       c.Physics.TrailLength,
		Walls:             c.Playfield.Walls,
		WallFriction:      c.Playfield.WallFriction,
		WallElasticity:    c.Playfield.WallElasticity,
		ImpactScale:       c.Audio.ImpactScale,
		ListenerRadius:    c.Audio.Listener.Radius,
		ListenerNearRatio: c.Audio.Listener.NearRatio,
	}
}

// BuildEffects constructs the effect list in file order.
func (c *Config) BuildEffects() ([]effect.Effect, error) {
	out := make([]effect.Effect, 0, len(c.Effects))
	for i, spec := range c.Effects {
		e, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("config: effects[%d]: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// BodySpecs expands the body list, repeating entries with a count and
// spreading the copies by their offset.
func (c *Config) BodySpecs() []sim.BodySpec {
	var out []sim.BodySpec
	for _, b := range c.Bodies {
		n := b.Count
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			spec := b.spec()
			spec.Position = spec.Position.Add(b.Offset.Vector().Mult(float64(i)))
			out = append(out, spec)
		}
	}
	return out
}

type BodySpec struct {
	Shape      string     `yaml:"shape"`
	Position   Vec        `yaml:"position"`
	Velocity   Vec        `yaml:"velocity"`
	Radius     float64    `yaml:"radius"`
	Width      float64    `yaml:"width"`
	Height     float64    `yaml:"height"`
	Mass       float64    `yaml:"mass"`
	Friction   float64    `yaml:"friction"`
	Elasticity float64    `yaml:"elasticity"`
	Count      int        `yaml:"count"`
	Offset     Vec        `yaml:"offset"`
	Sound      *SoundSpec `yaml:"sound"`
}

type SoundSpec struct {
	Type        string   `yaml:"type"`
	Resource    string   `yaml:"resource"`
	Amplitude   float64  `yaml:"amplitude"`
	PitchOnGrid *bool    `yaml:"pitch_on_grid"`
	Looping     *bool    `yaml:"looping"`
	Volume      *float64 `yaml:"volume"`
}

func (b BodySpec) spec() sim.BodySpec {
	spec := sim.BodySpec{
		Shape:      component.ShapeKind(b.Shape),
		Position:   b.Position.Vector(),
		Velocity:   b.Velocity.Vector(),
		Radius:     b.Radius,
		Width:      b.Width,
		Height:     b.Height,
		Mass:       b.Mass,
		Friction:   b.Friction,
		Elasticity: b.Elasticity,
	}
	if b.Sound != nil {
		spec.Sound = &component.SoundEmitter{
			VoiceType:   b.Sound.Type,
			Resource:    b.Sound.Resource,
			Amplitude:   b.Sound.Amplitude,
			PitchOnGrid: b.Sound.PitchOnGrid,
			Looping:     b.Sound.Looping,
			Volume:      b.Sound.Volume,
		}
	}
	return spec
}
