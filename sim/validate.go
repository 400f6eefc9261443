package sim

import (
	"fmt"

	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
)

// Validate checks the world, the space, the voice tracker and the cooldown
// maps against each other. Problems are returned as warnings and left as
// they are.
func (c *Coordinator) Validate() []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	ecs.ForEach(c.world, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody) {
		switch {
		case pb.Body == nil:
			warn("entity %s has no body", e)
			return
		case !c.space.ContainsBody(pb.Body):
			warn("entity %s body is not in the space", e)
		}
		switch {
		case pb.Shape == nil:
			warn("entity %s has no shape", e)
		case pb.Shape.Body() != pb.Body:
			warn("entity %s shape is attached to another body", e)
		case !c.space.ContainsShape(pb.Shape):
			warn("entity %s shape is not in the space", e)
		}
	})

	for shape, e := range c.shapeToEntity {
		if !ecs.IsAlive(c.world, e) {
			warn("shape %p belongs to dead entity %s", shape, e)
		}
	}
	for _, e := range c.tracker.Entities() {
		if !ecs.IsAlive(c.world, e) {
			v, _ := c.tracker.Voice(e)
			warn("voice %d is attached to dead entity %s", v.ID, e)
		}
	}
	for _, e := range c.registry.CooldownEntities() {
		if !ecs.IsAlive(c.world, e) {
			warn("cooldown entry for dead entity %s", e)
		}
	}
	if c.state != Idle {
		warn("coordinator is %s outside a step", c.state)
	}
	return warnings
}
