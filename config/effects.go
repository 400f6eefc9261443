package config

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/effect"
)

// EffectSpec is one entry of the effects list. Which fields apply depends on
// Kind; Active defaults to true.
type EffectSpec struct {
	Kind     string  `yaml:"kind"`
	Active   *bool   `yaml:"active"`
	Position Vec     `yaml:"position"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`

	// Reverse spins a vortex clockwise.
	Reverse bool `yaml:"reverse"`

	// Size and Field describe a force field centred on Position.
	Size  Vec `yaml:"size"`
	Field Vec `yaml:"field"`

	Exit     Vec     `yaml:"exit"`
	Cooldown float64 `yaml:"cooldown"`
	Force    float64 `yaml:"force"`
	Angle    float64 `yaml:"angle"`
}

func (s EffectSpec) active() bool {
	return s.Active == nil || *s.Active
}

// Build constructs the effect s describes.
func (s EffectSpec) Build() (effect.Effect, error) {
	pos := s.Position.Vector()
	switch effect.Kind(s.Kind) {
	case effect.KindGravityWell:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: gravity_well radius %g", ErrInvalid, s.Radius)
		}
		return effect.NewGravityWell(effect.GravityWellParams{
			Active: s.active(), Position: pos, Radius: s.Radius, Strength: s.Strength,
		}), nil
	case effect.KindVortex:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("%w: vortex radius %g", ErrInvalid, s.Radius)
		}
		sign := 1.0
		if s.Reverse {
			sign = -1
		}
		return effect.NewVortex(effect.VortexParams{
			Active: s.active(), Position: pos, Radius: s.Radius, Strength: s.Strength, Sign: sign,
		}), nil
	case effect.KindForceField:
		if s.Size.X <= 0 || s.Size.Y <= 0 {
			return nil, fmt.Errorf("%w: force_field size %gx%g", ErrInvalid, s.Size.X, s.Size.Y)
		}
		hw, hh := s.Size.X/2, s.Size.Y/2
		return effect.NewForceField(effect.ForceFieldParams{
			Active:   s.active(),
			Bounds:   cp.BB{L: pos.X - hw, B: pos.Y - hh, R: pos.X + hw, T: pos.Y + hh},
			Strength: s.Field.Vector(),
		}), nil
	case effect.KindTeleporter:
		if s.Radius <= 0 || s.Cooldown < 0 {
			return nil, fmt.Errorf("%w: teleporter radius %g cooldown %g", ErrInvalid, s.Radius, s.Cooldown)
		}
		return effect.NewTeleporter(effect.TeleporterParams{
			Active: s.active(), Entrance: pos, Exit: s.Exit.Vector(), Radius: s.Radius, Cooldown: s.Cooldown,
		}), nil
	case effect.KindSpringLauncher:
		if s.Radius <= 0 || s.Cooldown < 0 {
			return nil, fmt.Errorf("%w: spring_launcher radius %g cooldown %g", ErrInvalid, s.Radius, s.Cooldown)
		}
		return effect.NewSpringLauncher(effect.SpringLauncherParams{
			Active: s.active(), Position: pos, Radius: s.Radius, Cooldown: s.Cooldown, Force: s.Force, Angle: s.Angle,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
}
