package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/effect"
	"github.com/milk9111/soundbox/ipc"
	"github.com/milk9111/soundbox/voice"
)

type fixedEnv struct {
	gravity cp.Vector
	wind    cp.Vector
}

func (e fixedEnv) Gravity() cp.Vector   { return e.gravity }
func (e fixedEnv) WindForce() cp.Vector { return e.wind }

func spawnBody(t *testing.T, w *ecs.World, space *cp.Space, pos cp.Vector, trail int) ecs.Entity {
	t.Helper()
	body := cp.NewBody(1, cp.MomentForCircle(1, 0, 4, cp.Vector{}))
	shape := cp.NewCircle(body, 4, cp.Vector{})
	space.AddBody(body)
	space.AddShape(shape)
	body.SetPosition(pos)

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body, Shape: shape}); err != nil {
		t.Fatal(err)
	}
	if trail > 0 {
		if err := ecs.Add(w, e, component.TrailComponent.Kind(), &component.Trail{Max: trail}); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func TestWrapPosition(t *testing.T) {
	const width, height = 800.0, 600.0
	cases := []struct {
		name    string
		in      cp.Vector
		want    cp.Vector
		wrapped bool
	}{
		{"left_snaps_to_right_margin", cp.Vector{X: -60, Y: 100}, cp.Vector{X: 850, Y: 100}, true},
		{"just_past_left", cp.Vector{X: -51, Y: 100}, cp.Vector{X: 850, Y: 100}, true},
		{"on_left_margin_stays", cp.Vector{X: -50, Y: 100}, cp.Vector{X: -50, Y: 100}, false},
		{"right_snaps_to_left_margin", cp.Vector{X: 900, Y: 100}, cp.Vector{X: -50, Y: 100}, true},
		{"top_snaps_to_bottom_margin", cp.Vector{X: 10, Y: -75}, cp.Vector{X: 10, Y: 650}, true},
		{"bottom_snaps_to_top_margin", cp.Vector{X: 10, Y: 651}, cp.Vector{X: 10, Y: -50}, true},
		{"corner_wraps_both_axes", cp.Vector{X: -70, Y: 700}, cp.Vector{X: 850, Y: -50}, true},
		{"inside_unchanged", cp.Vector{X: 400, Y: 300}, cp.Vector{X: 400, Y: 300}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, wrapped := WrapPosition(c.in, width, height)
			if got != c.want || wrapped != c.wrapped {
				t.Fatalf("expected %v/%v, got %v/%v", c.want, c.wrapped, got, wrapped)
			}
		})
	}
}

func TestWrapSystemClearsTrail(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	e := spawnBody(t, w, space, cp.Vector{X: 100, Y: 100}, 8)
	stay := spawnBody(t, w, space, cp.Vector{X: 200, Y: 100}, 8)

	trails := NewTrailSystem()
	trails.Update(w, 0)
	trails.Update(w, 0)

	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	pb.Body.SetPosition(cp.Vector{X: -60, Y: 100})

	var wrappedEntity ecs.Entity
	wrap := NewWrapSystem(800, 600)
	wrap.OnWrap = func(e ecs.Entity, _, _ cp.Vector) { wrappedEntity = e }
	wrap.Update(w, 0)

	if got := pb.Body.Position(); got.X != 850 {
		t.Fatalf("expected x=850, got %v", got)
	}
	if tr, _ := ecs.Get(w, e, component.TrailComponent.Kind()); tr.Len() != 0 {
		t.Fatalf("expected empty trail after wrap, got %d", tr.Len())
	}
	if tr, _ := ecs.Get(w, stay, component.TrailComponent.Kind()); tr.Len() != 2 {
		t.Fatalf("unwrapped body lost its trail: %d", tr.Len())
	}
	if wrappedEntity != e {
		t.Fatalf("OnWrap reported %v, want %v", wrappedEntity, e)
	}
}

func TestTrailIsBounded(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	e := spawnBody(t, w, space, cp.Vector{}, 3)
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())

	s := NewTrailSystem()
	for i := 0; i < 5; i++ {
		pb.Body.SetPosition(cp.Vector{X: float64(i)})
		s.Update(w, 0)
	}
	tr, _ := ecs.Get(w, e, component.TrailComponent.Kind())
	if tr.Len() != 3 || tr.Points[0].X != 2 || tr.Points[2].X != 4 {
		t.Fatalf("expected last three points, got %v", tr.Points)
	}
}

func TestWindIsHorizontalOnly(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	e := spawnBody(t, w, space, cp.Vector{X: 10, Y: 10}, 0)

	NewWindSystem(fixedEnv{wind: cp.Vector{X: 30}}).Update(w, 1.0/60)
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if got := pb.Body.Force(); got != (cp.Vector{X: 30}) {
		t.Fatalf("expected wind force (30,0), got %v", got)
	}
}

func TestPhysicsSystemUsesEnvironmentGravity(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	e := spawnBody(t, w, space, cp.Vector{}, 0)

	NewPhysicsSystem(space, fixedEnv{gravity: cp.Vector{Y: 100}}).Update(w, 0.5)
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if v := pb.Body.Velocity(); math.Abs(v.Y-50) > 1e-9 || v.X != 0 {
		t.Fatalf("expected vy=50 after half a second, got %v", v)
	}
}

func TestEffectSystemPassesClock(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	spawnBody(t, w, space, cp.Vector{X: 1}, 0)

	launcher := effect.NewSpringLauncher(effect.SpringLauncherParams{Active: true, Radius: 5, Cooldown: 1, Force: 10})
	now := 0.0
	s := NewEffectSystem(effect.NewRegistry(launcher), func() float64 { return now })

	s.Update(w, 0)
	now = 0.5
	s.Update(w, 0)
	if s.LastStats().Launched != 0 {
		t.Fatal("launcher fired inside its cooldown")
	}
	now = 1.5
	s.Update(w, 0)
	if s.LastStats().Launched != 1 {
		t.Fatal("launcher should fire again after the cooldown")
	}
}

type positionCounter struct {
	ipc.Stub
	batches []int
	params  []float64
}

func (p *positionCounter) UpdateVoicePositions(pos []ipc.VoicePosition) {
	p.batches = append(p.batches, len(pos))
}

func (p *positionCounter) UpdateParameter(_ int32, _ string, v float64) {
	p.params = append(p.params, v)
}

func TestVoiceSyncBatchesAndForwardsImpact(t *testing.T) {
	w := ecs.NewWorld()
	space := cp.NewSpace()
	rec := &positionCounter{}
	tracker := voice.NewTracker(rec, nil)
	s := NewVoiceSyncSystem(tracker, 100)

	s.Update(w, 0)
	if len(rec.batches) != 0 {
		t.Fatal("no voices must mean no position message")
	}

	for i := 0; i < 3; i++ {
		e := spawnBody(t, w, space, cp.Vector{X: float64(i)}, 0)
		_ = ecs.Add(w, e, component.SoundEmitterComponent.Kind(), &component.SoundEmitter{VoiceType: "synth"})
		_ = ecs.Add(w, e, component.ImpactComponent.Kind(), &component.Impact{Impulse: 250})
	}
	s.Update(w, 0)

	if len(rec.batches) != 1 || rec.batches[0] != 3 {
		t.Fatalf("expected one batch of 3, got %v", rec.batches)
	}
	if len(rec.params) != 3 || rec.params[0] != 1 {
		t.Fatalf("expected three clamped impacts, got %v", rec.params)
	}
	s.Update(w, 0)
	if len(rec.params) != 3 {
		t.Fatal("impact must be consumed once")
	}
}
