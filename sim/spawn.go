package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
)

var (
	ErrStepping     = errors.New("coordinator is stepping")
	ErrUnknownShape = errors.New("unknown shape kind")
	ErrBadDimension = errors.New("shape dimensions must be positive")
	ErrBadMass      = errors.New("mass must be positive")
)

// BodySpec describes one dynamic body. Radius is the circle radius, the box
// corner radius or the segment thickness; a segment spans Width along x.
type BodySpec struct {
	Shape      component.ShapeKind
	Position   cp.Vector
	Velocity   cp.Vector
	Radius     float64
	Width      float64
	Height     float64
	Mass       float64
	Friction   float64
	Elasticity float64

	// Sound, when set, gives the body a remote voice from the moment it
	// spawns.
	Sound *component.SoundEmitter
}

func buildBody(spec BodySpec) (*cp.Body, *cp.Shape, error) {
	if spec.Mass <= 0 || math.IsNaN(spec.Mass) {
		return nil, nil, ErrBadMass
	}

	var body *cp.Body
	var shape *cp.Shape
	switch spec.Shape {
	case component.ShapeCircle, "":
		if spec.Radius <= 0 {
			return nil, nil, ErrBadDimension
		}
		body = cp.NewBody(spec.Mass, cp.MomentForCircle(spec.Mass, 0, spec.Radius, cp.Vector{}))
		shape = cp.NewCircle(body, spec.Radius, cp.Vector{})
	case component.ShapeBox:
		if spec.Width <= 0 || spec.Height <= 0 {
			return nil, nil, ErrBadDimension
		}
		body = cp.NewBody(spec.Mass, cp.MomentForBox(spec.Mass, spec.Width, spec.Height))
		shape = cp.NewBox(body, spec.Width, spec.Height, math.Max(spec.Radius, 0))
	case component.ShapeSegment:
		if spec.Width <= 0 {
			return nil, nil, ErrBadDimension
		}
		a := cp.Vector{X: -spec.Width / 2}
		b := cp.Vector{X: spec.Width / 2}
		r := math.Max(spec.Radius, 1)
		body = cp.NewBody(spec.Mass, cp.MomentForSegment(spec.Mass, a, b, r))
		shape = cp.NewSegment(body, a, b, r)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownShape, spec.Shape)
	}

	body.SetPosition(spec.Position)
	body.SetVelocityVector(spec.Velocity)
	shape.SetFriction(spec.Friction)
	shape.SetElasticity(spec.Elasticity)
	return body, shape, nil
}

// Spawn creates a dynamic body with exactly one shape, attaches the shape
// before either joins the space, and registers a voice when spec.Sound is
// set.
func (c *Coordinator) Spawn(spec BodySpec) (ecs.Entity, error) {
	if c.state == Stepping {
		return 0, fmt.Errorf("sim: spawn: %w", ErrStepping)
	}
	body, shape, err := buildBody(spec)
	if err != nil {
		return 0, fmt.Errorf("sim: spawn: %w", err)
	}
	if spec.Sound != nil {
		shape.SetCollisionType(collisionTypeEmitter)
	} else {
		shape.SetCollisionType(collisionTypeBody)
	}

	e := ecs.CreateEntity(c.world)
	c.space.AddBody(body)
	c.space.AddShape(shape)
	c.shapeToEntity[shape] = e

	kind := spec.Shape
	if kind == "" {
		kind = component.ShapeCircle
	}
	pb := &component.PhysicsBody{
		Body:       body,
		Shape:      shape,
		Kind:       kind,
		Radius:     spec.Radius,
		Width:      spec.Width,
		Height:     spec.Height,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
	}
	if err := ecs.Add(c.world, e, component.PhysicsBodyComponent.Kind(), pb); err != nil {
		c.despawn(e)
		return 0, fmt.Errorf("sim: spawn: %w", err)
	}
	if c.cfg.TrailLength > 0 {
		_ = ecs.Add(c.world, e, component.TrailComponent.Kind(), &component.Trail{Max: c.cfg.TrailLength})
	}
	if spec.Sound != nil {
		emitter := *spec.Sound
		_ = ecs.Add(c.world, e, component.SoundEmitterComponent.Kind(), &emitter)
		_ = ecs.Add(c.world, e, component.ImpactComponent.Kind(), &component.Impact{})
		c.tracker.Register(e, emitter, spec.Position.X, spec.Position.Y)
	}
	if c.debug {
		c.logger.Printf("Coordinator: spawned %s %s at (%.1f, %.1f)", kind, e, spec.Position.X, spec.Position.Y)
	}
	return e, nil
}

// Despawn removes e from the space and the world, evicts it from every
// cooldown map and releases its voice. Calls made while a step is running
// are deferred until the step ends.
func (c *Coordinator) Despawn(e ecs.Entity) bool {
	if !ecs.IsAlive(c.world, e) {
		return false
	}
	if c.state == Stepping {
		c.pending = append(c.pending, e)
		return true
	}
	c.despawn(e)
	return true
}

func (c *Coordinator) despawn(e ecs.Entity) {
	if pb, ok := ecs.Get(c.world, e, component.PhysicsBodyComponent.Kind()); ok {
		if pb.Shape != nil {
			delete(c.shapeToEntity, pb.Shape)
			if c.space.ContainsShape(pb.Shape) {
				c.space.RemoveShape(pb.Shape)
			}
		}
		if pb.Body != nil && c.space.ContainsBody(pb.Body) {
			c.space.RemoveBody(pb.Body)
		}
	}
	c.registry.Evict(e)
	c.tracker.Release(e)
	ecs.DestroyEntity(c.world, e)
}

func (c *Coordinator) flushPending() {
	if len(c.pending) == 0 {
		return
	}
	pending := c.pending
	c.pending = nil
	for _, e := range pending {
		if ecs.IsAlive(c.world, e) {
			c.despawn(e)
		}
	}
}

// Clear despawns every dynamic body and tells the audio engine to stop all
// voices. It returns the number of bodies removed.
func (c *Coordinator) Clear() int {
	if c.state == Stepping {
		c.logger.Printf("Coordinator: Clear ignored while stepping")
		return 0
	}
	entities := ecs.Query(c.world, component.PhysicsBodyComponent.Kind())
	for _, e := range entities {
		c.despawn(e)
	}
	c.tracker.ReleaseAll()
	c.sender.StopAll()
	return len(entities)
}

// Mute detaches e's sound emitter and destroys its voice. The body stays in
// the space but no longer reports impacts. It reports false if e had no
// emitter or a step is running.
func (c *Coordinator) Mute(e ecs.Entity) bool {
	if c.state == Stepping {
		c.logger.Printf("Coordinator: Mute ignored while stepping")
		return false
	}
	if !ecs.Remove(c.world, e, component.SoundEmitterComponent.Kind()) {
		return false
	}
	ecs.Remove(c.world, e, component.ImpactComponent.Kind())
	if pb, ok := ecs.Get(c.world, e, component.PhysicsBodyComponent.Kind()); ok && pb.Shape != nil {
		pb.Shape.SetCollisionType(collisionTypeBody)
	}
	c.tracker.Release(e)
	return true
}
