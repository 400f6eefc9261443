package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
)

// WindSystem pushes every dynamic body with the environment's wind force.
type WindSystem struct {
	Env Environment
}

func NewWindSystem(env Environment) *WindSystem {
	return &WindSystem{Env: env}
}

func (s *WindSystem) Update(w *ecs.World, _ float64) {
	if s == nil || s.Env == nil || w == nil {
		return
	}
	force := s.Env.WindForce()
	if force == (cp.Vector{}) {
		return
	}
	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		pb.Body.ApplyForceAtWorldPoint(force, pb.Body.Position())
	})
}
