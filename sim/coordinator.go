// Package sim owns the physics space and runs one simulation tick at a time:
// wind, effects, integration, trails, wrapping and voice sync, in that order.
package sim

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/ecs/system"
	"github.com/milk9111/soundbox/effect"
	"github.com/milk9111/soundbox/ipc"
	"github.com/milk9111/soundbox/voice"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeBody
	collisionTypeEmitter
)

// State is the coordinator's step state.
type State int

const (
	Idle State = iota
	Stepping
)

func (s State) String() string {
	if s == Stepping {
		return "stepping"
	}
	return "idle"
}

// Config holds the coordinator's playfield and solver settings.
type Config struct {
	Width  float64
	Height float64

	// FixedStep is the dt handed to Step by Advance.
	FixedStep   float64
	MaxSubSteps int
	Iterations  uint

	Gravity       cp.Vector
	WindDirection float64
	WindStrength  float64

	TrailLength int

	Walls          bool
	WallFriction   float64
	WallElasticity float64

	// ImpactScale is the first-contact impulse reported as a full-scale
	// impact parameter.
	ImpactScale float64

	ListenerRadius    float64
	ListenerNearRatio float64

	Logger *log.Logger
	Debug  bool
}

func DefaultConfig() Config {
	return Config{
		Width:             800,
		Height:            600,
		FixedStep:         1.0 / 60.0,
		MaxSubSteps:       5,
		Iterations:        10,
		Gravity:           DefaultGravity,
		TrailLength:       24,
		WallFriction:      0.7,
		WallElasticity:    0.5,
		ImpactScale:       500,
		ListenerRadius:    600,
		ListenerNearRatio: 0.2,
	}
}

// Coordinator is the physics step coordinator. It is not safe for concurrent
// use; everything runs on the frame loop's goroutine.
type Coordinator struct {
	cfg    Config
	logger *log.Logger
	debug  bool

	world     *ecs.World
	space     *cp.Space
	env       *Environment
	registry  *effect.Registry
	tracker   *voice.Tracker
	sender    ipc.Sender
	scheduler *ecs.Scheduler
	effects   *system.EffectSystem

	walls         []*cp.Shape
	shapeToEntity map[*cp.Shape]ecs.Entity

	state       State
	now         float64
	accumulator float64
	ticks       uint64
	pending     []ecs.Entity
	listener    cp.Vector
	wraps       uint64
}

// NewCoordinator builds the space, the optional boundary walls and the
// per-tick systems. A nil sender runs without audio sync.
func NewCoordinator(cfg Config, sender ipc.Sender, effects ...effect.Effect) *Coordinator {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.FixedStep <= 0 {
		cfg.FixedStep = def.FixedStep
	}
	if cfg.MaxSubSteps <= 0 {
		cfg.MaxSubSteps = def.MaxSubSteps
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = def.Iterations
	}
	if sender == nil {
		sender = ipc.Stub{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	space := cp.NewSpace()
	space.Iterations = cfg.Iterations

	env := NewEnvironment(cfg.Gravity)
	env.SetWind(cfg.WindDirection, cfg.WindStrength)
	space.SetGravity(env.Gravity())

	c := &Coordinator{
		cfg:           cfg,
		logger:        logger,
		debug:         cfg.Debug,
		world:         ecs.NewWorld(),
		space:         space,
		env:           env,
		registry:      effect.NewRegistry(effects...),
		tracker:       voice.NewTracker(sender, logger),
		sender:        sender,
		shapeToEntity: make(map[*cp.Shape]ecs.Entity),
	}
	if cfg.Walls {
		c.buildWalls()
	}
	c.setupHandlers()

	c.effects = system.NewEffectSystem(c.registry, c.Now)
	wrap := system.NewWrapSystem(cfg.Width, cfg.Height)
	wrap.OnWrap = c.onWrap
	c.scheduler = ecs.NewScheduler(
		system.NewWindSystem(env),
		c.effects,
		system.NewPhysicsSystem(space, env),
		system.NewTrailSystem(),
		wrap,
		system.NewVoiceSyncSystem(c.tracker, cfg.ImpactScale),
	)

	if cfg.ListenerRadius > 0 {
		c.ConfigureListener(cfg.ListenerRadius, cfg.ListenerNearRatio)
	}
	c.logger.Printf("Coordinator: %gx%g playfield, step %.4fs, %d effect(s), walls=%t",
		cfg.Width, cfg.Height, cfg.FixedStep, c.registry.Len(), cfg.Walls)
	return c
}

func (c *Coordinator) buildWalls() {
	w, h := c.cfg.Width, c.cfg.Height
	thickness := 1.0
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: w, Y: 0}},
		{a: cp.Vector{X: 0, Y: h}, b: cp.Vector{X: w, Y: h}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: h}},
		{a: cp.Vector{X: w, Y: 0}, b: cp.Vector{X: w, Y: h}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(c.space.StaticBody, seg.a, seg.b, thickness)
		shape.SetFriction(c.cfg.WallFriction)
		shape.SetElasticity(c.cfg.WallElasticity)
		shape.SetCollisionType(collisionTypeWall)
		c.space.AddShape(shape)
		c.walls = append(c.walls, shape)
	}
}

// setupHandlers records the strongest first-contact impulse each emitter
// takes during a step. Both shapes of an emitter-emitter pair are recorded.
func (c *Coordinator) setupHandlers() {
	handler := c.space.NewWildcardCollisionHandler(collisionTypeEmitter)
	handler.PostSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
		if !arb.IsFirstContact() {
			return
		}
		impulse := arb.TotalImpulse().Length()
		if impulse <= 0 || math.IsNaN(impulse) || math.IsInf(impulse, 0) {
			return
		}
		a, b := arb.Shapes()
		c.recordImpact(a, impulse)
		c.recordImpact(b, impulse)
	}
}

func (c *Coordinator) recordImpact(shape *cp.Shape, impulse float64) {
	e, ok := c.shapeToEntity[shape]
	if !ok {
		return
	}
	imp, ok := ecs.Get(c.world, e, component.ImpactComponent.Kind())
	if !ok {
		return
	}
	if impulse > imp.Impulse {
		imp.Impulse = impulse
	}
}

func (c *Coordinator) onWrap(e ecs.Entity, from, to cp.Vector) {
	c.wraps++
	if c.debug {
		c.logger.Printf("Coordinator: wrapped %s (%.1f, %.1f) -> (%.1f, %.1f)", e, from.X, from.Y, to.X, to.Y)
	}
}

// Step runs one tick of dt seconds. It reports false, doing nothing, for a
// non-positive or non-finite dt and for a reentrant call.
func (c *Coordinator) Step(dt float64) bool {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return false
	}
	if c.state == Stepping {
		c.logger.Printf("Coordinator: Step called while stepping, ignored")
		return false
	}
	c.state = Stepping
	c.scheduler.Update(c.world, dt)
	c.now += dt
	c.ticks++
	c.state = Idle
	c.flushPending()
	return true
}

// Advance accumulates frame time and runs whole fixed steps, at most
// MaxSubSteps per call. Time beyond the cap is dropped, keeping only the
// fraction of a step. It returns the number of steps taken.
func (c *Coordinator) Advance(frameDt float64) int {
	if frameDt <= 0 || math.IsNaN(frameDt) || math.IsInf(frameDt, 0) {
		return 0
	}
	step := c.cfg.FixedStep
	c.accumulator += frameDt
	steps := 0
	for c.accumulator >= step && steps < c.cfg.MaxSubSteps {
		if !c.Step(step) {
			break
		}
		c.accumulator -= step
		steps++
	}
	if c.accumulator >= step {
		if c.debug {
			c.logger.Printf("Coordinator: dropping %.4fs of simulation time", c.accumulator-math.Mod(c.accumulator, step))
		}
		c.accumulator = math.Mod(c.accumulator, step)
	}
	return steps
}

// ReplaceEffects swaps the effect list. Cooldown history belongs to the old
// effects and is discarded with them.
func (c *Coordinator) ReplaceEffects(effects []effect.Effect) {
	c.registry.Replace(effects)
}

func (c *Coordinator) SetListener(x, y float64) {
	c.listener = cp.Vector{X: x, Y: y}
	c.sender.SetListenerPosition(x, y)
}

func (c *Coordinator) ConfigureListener(radiusPx, nearRatio float64) {
	c.cfg.ListenerRadius = radiusPx
	c.cfg.ListenerNearRatio = nearRatio
	c.sender.SetListenerConfig(radiusPx, nearRatio)
}

func (c *Coordinator) Listener() cp.Vector {
	return c.listener
}

// Shutdown releases every voice and sends a stop-all. The physics state is
// left intact.
func (c *Coordinator) Shutdown() {
	released := c.tracker.ReleaseAll()
	c.sender.StopAll()
	c.logger.Printf("Coordinator: shutdown after %d tick(s), released %d voice(s)", c.ticks, released)
}

// TrailLength returns the number of recorded trail points for e.
func (c *Coordinator) TrailLength(e ecs.Entity) int {
	tr, ok := ecs.Get(c.world, e, component.TrailComponent.Kind())
	if !ok {
		return 0
	}
	return tr.Len()
}

func (c *Coordinator) Trail(e ecs.Entity) []cp.Vector {
	tr, ok := ecs.Get(c.world, e, component.TrailComponent.Kind())
	if !ok {
		return nil
	}
	return append([]cp.Vector(nil), tr.Points...)
}

func (c *Coordinator) Body(e ecs.Entity) (*cp.Body, bool) {
	pb, ok := ecs.Get(c.world, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return nil, false
	}
	return pb.Body, true
}

func (c *Coordinator) Position(e ecs.Entity) (cp.Vector, bool) {
	body, ok := c.Body(e)
	if !ok {
		return cp.Vector{}, false
	}
	return body.Position(), true
}

func (c *Coordinator) Bodies() []ecs.Entity {
	return ecs.Query(c.world, component.PhysicsBodyComponent.Kind())
}

func (c *Coordinator) World() *ecs.World             { return c.world }
func (c *Coordinator) Space() *cp.Space              { return c.space }
func (c *Coordinator) Environment() *Environment     { return c.env }
func (c *Coordinator) Registry() *effect.Registry    { return c.registry }
func (c *Coordinator) Tracker() *voice.Tracker       { return c.tracker }
func (c *Coordinator) Config() Config                { return c.cfg }
func (c *Coordinator) State() State                  { return c.state }
func (c *Coordinator) Ticks() uint64                 { return c.ticks }
func (c *Coordinator) Wraps() uint64                 { return c.wraps }
func (c *Coordinator) LastEffectStats() effect.Stats { return c.effects.LastStats() }

// Now is the simulation clock: the sum of every completed step's dt.
func (c *Coordinator) Now() float64 { return c.now }
