package sim

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/effect"
	"github.com/milk9111/soundbox/ipc"
)

type recordingSender struct {
	ipc.Stub
	calls   []string
	created []int32
	params  map[string][]float64
}

func (r *recordingSender) CreateVoiceExtended(spec ipc.VoiceSpec) {
	r.calls = append(r.calls, fmt.Sprintf("create %d", spec.ID))
	r.created = append(r.created, spec.ID)
}

func (r *recordingSender) DestroyVoice(id int32) {
	r.calls = append(r.calls, fmt.Sprintf("destroy %d", id))
}

func (r *recordingSender) UpdateParameter(id int32, param string, value float64) {
	if r.params == nil {
		r.params = make(map[string][]float64)
	}
	r.params[param] = append(r.params[param], value)
}

func (r *recordingSender) StopAll() {
	r.calls = append(r.calls, "stopAll")
}

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Gravity = cp.Vector{}
	cfg.ListenerRadius = 0
	cfg.Logger = log.New(io.Discard, "", 0)
	return cfg
}

func ball(x, y float64) BodySpec {
	return BodySpec{Shape: component.ShapeCircle, Position: cp.Vector{X: x, Y: y}, Radius: 5, Mass: 1}
}

func TestGravityWellEndToEnd(t *testing.T) {
	well := effect.NewGravityWell(effect.GravityWellParams{Active: true, Radius: 200, Strength: 1000})
	c := NewCoordinator(quietConfig(), nil, well)
	e, err := c.Spawn(ball(100, 0))
	if err != nil {
		t.Fatal(err)
	}

	if !c.Step(1) {
		t.Fatal("step refused")
	}
	body, _ := c.Body(e)
	v := body.Velocity()
	if math.Abs(v.X-(-0.1)) > 1e-12 || v.Y != 0 {
		t.Fatalf("expected velocity (-0.1, 0) after one second, got %v", v)
	}
	if got := c.LastEffectStats().Forced; got != 1 {
		t.Fatalf("expected one forced body, got %d", got)
	}
}

func TestStepWrapsAndClearsTrail(t *testing.T) {
	c := NewCoordinator(quietConfig(), nil)
	e, _ := c.Spawn(ball(400, 300))
	c.Step(1.0 / 60)
	c.Step(1.0 / 60)
	if c.TrailLength(e) != 2 {
		t.Fatalf("expected two trail points, got %d", c.TrailLength(e))
	}

	body, _ := c.Body(e)
	body.SetPosition(cp.Vector{X: -60, Y: 300})
	c.Step(1.0 / 60)

	pos, _ := c.Position(e)
	if pos.X != 850 {
		t.Fatalf("expected x == 850, got %v", pos.X)
	}
	if c.TrailLength(e) != 0 {
		t.Fatalf("expected empty trail after wrap, got %d", c.TrailLength(e))
	}
	if c.Wraps() != 1 {
		t.Fatalf("expected one wrap, got %d", c.Wraps())
	}
}

func TestWindPushesAlongXOnly(t *testing.T) {
	cfg := quietConfig()
	cfg.WindDirection = math.Pi / 3
	cfg.WindStrength = 10
	c := NewCoordinator(cfg, nil)
	e, _ := c.Spawn(ball(400, 300))

	c.Step(1)
	body, _ := c.Body(e)
	v := body.Velocity()
	if math.Abs(v.X-10*math.Cos(math.Pi/3)) > 1e-9 || v.Y != 0 {
		t.Fatalf("unexpected wind velocity %v", v)
	}
}

func TestSpawnDespawnWithoutTick(t *testing.T) {
	rec := &recordingSender{}
	c := NewCoordinator(quietConfig(), rec)

	spec := ball(10, 10)
	spec.Sound = &component.SoundEmitter{VoiceType: "sampler", Resource: "kick.wav", Amplitude: 0.8}
	a, err := c.Spawn(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Despawn(a) {
		t.Fatal("despawn failed")
	}
	b, _ := c.Spawn(spec)

	want := []string{"create 1", "destroy 1", "create 2"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
	if ecs.IsAlive(c.World(), a) || !ecs.IsAlive(c.World(), b) {
		t.Fatal("entity liveness wrong after despawn and respawn")
	}
	if c.Despawn(a) {
		t.Fatal("second despawn of a stale handle must fail")
	}
}

func TestDespawnEvictsCooldowns(t *testing.T) {
	launcher := effect.NewSpringLauncher(effect.SpringLauncherParams{Active: true, Position: cp.Vector{X: 400, Y: 300}, Radius: 20, Cooldown: 10, Force: 5})
	c := NewCoordinator(quietConfig(), nil, launcher)
	e, _ := c.Spawn(ball(400, 300))

	c.Step(1.0 / 60)
	if c.LastEffectStats().Launched != 1 {
		t.Fatal("launcher did not fire")
	}
	if launcher.Cooldowns().Len() != 1 {
		t.Fatal("expected a cooldown entry")
	}
	c.Despawn(e)
	if launcher.Cooldowns().Len() != 0 {
		t.Fatal("cooldown entry survived despawn")
	}
	if w := c.Validate(); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestMuteReleasesVoiceAndKeepsBody(t *testing.T) {
	rec := &recordingSender{}
	c := NewCoordinator(quietConfig(), rec)
	spec := ball(100, 100)
	spec.Sound = &component.SoundEmitter{VoiceType: "sampler", Resource: "snare.wav"}
	e, err := c.Spawn(spec)
	if err != nil {
		t.Fatal(err)
	}
	plain, _ := c.Spawn(ball(300, 100))

	if !c.Mute(e) {
		t.Fatal("mute failed")
	}
	if c.Mute(e) || c.Mute(plain) {
		t.Fatal("mute of an entity without an emitter must fail")
	}
	if ecs.Has(c.World(), e, component.SoundEmitterComponent.Kind()) || ecs.Has(c.World(), e, component.ImpactComponent.Kind()) {
		t.Fatal("sound components still attached")
	}
	if _, ok := c.Body(e); !ok {
		t.Fatal("mute removed the body")
	}
	if c.Tracker().Len() != 0 {
		t.Fatal("voice still tracked")
	}

	c.Step(1.0 / 60)
	want := []string{"create 1", "destroy 1"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
	if w := c.Validate(); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestClearStopsAll(t *testing.T) {
	rec := &recordingSender{}
	c := NewCoordinator(quietConfig(), rec)
	for i := 0; i < 3; i++ {
		spec := ball(float64(100*i+50), 100)
		if i == 0 {
			spec.Sound = &component.SoundEmitter{VoiceType: "synth"}
		}
		if _, err := c.Spawn(spec); err != nil {
			t.Fatal(err)
		}
	}

	if n := c.Clear(); n != 3 {
		t.Fatalf("expected 3 cleared, got %d", n)
	}
	if len(c.Bodies()) != 0 || c.Tracker().Len() != 0 {
		t.Fatal("bodies or voices left after clear")
	}
	if last := rec.calls[len(rec.calls)-1]; last != "stopAll" {
		t.Fatalf("expected stopAll last, got %v", rec.calls)
	}
}

func TestAdvanceCapsSubSteps(t *testing.T) {
	cfg := quietConfig()
	cfg.FixedStep = 0.25
	cfg.MaxSubSteps = 3
	c := NewCoordinator(cfg, nil)

	cases := []struct {
		frame float64
		steps int
	}{
		{0.625, 2},
		{0.0625, 0},
		{0.0625, 1},
		{10, 3},
		{0.25, 1},
		{-1, 0},
		{math.NaN(), 0},
	}
	total := 0
	for i, tc := range cases {
		got := c.Advance(tc.frame)
		if got != tc.steps {
			t.Fatalf("case %d: Advance(%v) = %d, want %d", i, tc.frame, got, tc.steps)
		}
		total += got
	}
	if c.Ticks() != uint64(total) {
		t.Fatalf("ticks %d != steps %d", c.Ticks(), total)
	}
	if c.Now() != float64(total)*0.25 {
		t.Fatalf("clock %v != %v", c.Now(), float64(total)*0.25)
	}
}

func TestStepRejectsBadDt(t *testing.T) {
	c := NewCoordinator(quietConfig(), nil)
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if c.Step(dt) {
			t.Fatalf("Step(%v) should be refused", dt)
		}
	}
	if c.Ticks() != 0 || c.State() != Idle {
		t.Fatal("refused steps changed state")
	}
}

func TestSpawnErrors(t *testing.T) {
	c := NewCoordinator(quietConfig(), nil)
	cases := []struct {
		name string
		spec BodySpec
		err  error
	}{
		{"zero_mass", BodySpec{Shape: component.ShapeCircle, Radius: 1}, ErrBadMass},
		{"zero_radius", BodySpec{Shape: component.ShapeCircle, Mass: 1}, ErrBadDimension},
		{"flat_box", BodySpec{Shape: component.ShapeBox, Width: 4, Mass: 1}, ErrBadDimension},
		{"unknown", BodySpec{Shape: "hexagon", Radius: 1, Mass: 1}, ErrUnknownShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Spawn(tc.spec); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
	if len(c.Bodies()) != 0 {
		t.Fatal("failed spawns left bodies behind")
	}
}

func TestSpawnShapes(t *testing.T) {
	c := NewCoordinator(quietConfig(), nil)
	specs := []BodySpec{
		ball(100, 100),
		{Shape: component.ShapeBox, Position: cp.Vector{X: 200, Y: 100}, Width: 20, Height: 10, Mass: 2},
		{Shape: component.ShapeSegment, Position: cp.Vector{X: 300, Y: 100}, Width: 40, Radius: 2, Mass: 1},
	}
	for _, spec := range specs {
		e, err := c.Spawn(spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.Shape, err)
		}
		pb, _ := ecs.Get(c.World(), e, component.PhysicsBodyComponent.Kind())
		if pb.Shape == nil || pb.Shape.Body() != pb.Body {
			t.Fatalf("%s: shape not attached to its body", spec.Shape)
		}
	}
	if w := c.Validate(); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestValidateReportsDetachedShape(t *testing.T) {
	c := NewCoordinator(quietConfig(), nil)
	e, _ := c.Spawn(ball(100, 100))
	pb, _ := ecs.Get(c.World(), e, component.PhysicsBodyComponent.Kind())
	c.Space().RemoveShape(pb.Shape)

	w := c.Validate()
	if len(w) != 1 || !strings.Contains(w[0], "shape is not in the space") {
		t.Fatalf("expected a detached shape warning, got %v", w)
	}
}

func TestImpactParameterOnWallHit(t *testing.T) {
	cfg := quietConfig()
	cfg.Gravity = DefaultGravity
	cfg.Walls = true
	rec := &recordingSender{}
	c := NewCoordinator(cfg, rec)

	spec := ball(400, 560)
	spec.Velocity = cp.Vector{Y: 400}
	spec.Elasticity = 0.5
	spec.Sound = &component.SoundEmitter{VoiceType: "perc"}
	if _, err := c.Spawn(spec); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60 && len(rec.params["impact"]) == 0; i++ {
		c.Step(1.0 / 60)
	}
	got := rec.params["impact"]
	if len(got) == 0 {
		t.Fatal("no impact parameter sent")
	}
	if got[0] <= 0 || got[0] > 1 {
		t.Fatalf("impact %v outside (0,1]", got[0])
	}
}
