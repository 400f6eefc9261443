package system

import (
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
)

// TrailSystem appends each body's position to its trail.
type TrailSystem struct{}

func NewTrailSystem() *TrailSystem {
	return &TrailSystem{}
}

func (s *TrailSystem) Update(w *ecs.World, _ float64) {
	if w == nil {
		return
	}
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TrailComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, tr *component.Trail) {
		if pb.Body == nil {
			return
		}
		tr.Push(pb.Body.Position())
	})
}
