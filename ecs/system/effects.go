package system

import (
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/effect"
)

// EffectSystem runs the effect registry over every dynamic body.
type EffectSystem struct {
	Registry *effect.Registry
	Now      func() float64

	targets []effect.Target
	last    effect.Stats
}

func NewEffectSystem(registry *effect.Registry, now func() float64) *EffectSystem {
	return &EffectSystem{Registry: registry, Now: now}
}

func (s *EffectSystem) Update(w *ecs.World, _ float64) {
	if s == nil || s.Registry == nil || w == nil {
		return
	}
	s.targets = s.targets[:0]
	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		s.targets = append(s.targets, effect.Target{Entity: e, Body: pb.Body})
	})

	now := 0.0
	if s.Now != nil {
		now = s.Now()
	}
	s.last = s.Registry.Apply(s.targets, now)
}

// LastStats reports what the most recent pass did.
func (s *EffectSystem) LastStats() effect.Stats {
	return s.last
}
