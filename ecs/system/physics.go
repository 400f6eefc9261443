package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
)

// PhysicsSystem hands integration to the Chipmunk space.
type PhysicsSystem struct {
	Space *cp.Space
	Env   Environment
}

func NewPhysicsSystem(space *cp.Space, env Environment) *PhysicsSystem {
	return &PhysicsSystem{Space: space, Env: env}
}

func (s *PhysicsSystem) Update(_ *ecs.World, dt float64) {
	if s == nil || s.Space == nil || dt <= 0 {
		return
	}
	if s.Env != nil {
		s.Space.SetGravity(s.Env.Gravity())
	}
	s.Space.Step(dt)
}
