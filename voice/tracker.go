// Package voice mirrors sound-emitting entities as remote audio-engine
// voices. The tracker is optimistic: it assumes every command it hands to the
// sender was delivered and never rolls its own state back.
package voice

import (
	"log"

	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/ipc"
)

// Voice is the local copy of what was last sent for one remote voice.
type Voice struct {
	ID          int32
	Entity      ecs.Entity
	Type        string
	Resource    string
	X, Y        float64
	Amplitude   float64
	PitchOnGrid *bool
	Looping     *bool
	Volume      *float64
}

// Tracker assigns voice ids and emits create, destroy and batched position
// commands. Ids increase monotonically and are never reissued.
type Tracker struct {
	sender ipc.Sender
	logger *log.Logger
	nextID int32
	live   map[ecs.Entity]*Voice
	order  []ecs.Entity
	batch  []ipc.VoicePosition
}

// NewTracker returns a tracker sending through sender. A nil logger uses the
// standard logger.
func NewTracker(sender ipc.Sender, logger *log.Logger) *Tracker {
	if sender == nil {
		sender = ipc.Stub{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		sender: sender,
		logger: logger,
		live:   make(map[ecs.Entity]*Voice),
	}
}

// Register creates a voice for e at (x, y). If e already has a live voice its
// id is returned and nothing is sent.
func (t *Tracker) Register(e ecs.Entity, emitter component.SoundEmitter, x, y float64) int32 {
	if v, ok := t.live[e]; ok {
		return v.ID
	}
	t.nextID++
	v := &Voice{
		ID:          t.nextID,
		Entity:      e,
		Type:        emitter.VoiceType,
		Resource:    emitter.Resource,
		X:           x,
		Y:           y,
		Amplitude:   emitter.Amplitude,
		PitchOnGrid: emitter.PitchOnGrid,
		Looping:     emitter.Looping,
		Volume:      emitter.Volume,
	}
	t.live[e] = v
	t.order = append(t.order, e)

	t.sender.CreateVoiceExtended(ipc.VoiceSpec{
		ID:          v.ID,
		Type:        v.Type,
		Resource:    v.Resource,
		X:           x,
		Y:           y,
		Amplitude:   v.Amplitude,
		PitchOnGrid: v.PitchOnGrid,
		Looping:     v.Looping,
		Volume:      v.Volume,
	})
	return v.ID
}

// Release destroys e's voice. It reports false if e had none.
func (t *Tracker) Release(e ecs.Entity) bool {
	v, ok := t.live[e]
	if !ok {
		return false
	}
	delete(t.live, e)
	for i, le := range t.order {
		if le == e {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.sender.DestroyVoice(v.ID)
	return true
}

// ReleaseAll destroys every live voice in creation order.
func (t *Tracker) ReleaseAll() int {
	entities := append([]ecs.Entity(nil), t.order...)
	for _, e := range entities {
		t.Release(e)
	}
	return len(entities)
}

// SetParameter sends a single named parameter for e's voice.
func (t *Tracker) SetParameter(e ecs.Entity, param string, value float64) bool {
	v, ok := t.live[e]
	if !ok {
		return false
	}
	if param == "amplitude" {
		v.Amplitude = value
	}
	t.sender.UpdateParameter(v.ID, param, value)
	return true
}

// Move records e's current position for the next Flush.
func (t *Tracker) Move(e ecs.Entity, x, y float64) bool {
	v, ok := t.live[e]
	if !ok {
		return false
	}
	v.X, v.Y = x, y
	return true
}

// Flush sends one batched position update holding every live voice. It sends
// nothing when no voice is live and returns the number of triples sent.
func (t *Tracker) Flush() int {
	if len(t.order) == 0 {
		return 0
	}
	t.batch = t.batch[:0]
	for _, e := range t.order {
		v := t.live[e]
		t.batch = append(t.batch, ipc.VoicePosition{ID: v.ID, X: v.X, Y: v.Y})
	}
	t.sender.UpdateVoicePositions(t.batch)
	return len(t.batch)
}

// Reconcile releases voices whose entity is no longer alive in w. It returns
// the number released.
func (t *Tracker) Reconcile(w *ecs.World) int {
	released := 0
	for _, e := range append([]ecs.Entity(nil), t.order...) {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.SoundEmitterComponent.Kind()) {
			continue
		}
		t.logger.Printf("voice: entity %s vanished without release, destroying voice %d", e, t.live[e].ID)
		t.Release(e)
		released++
	}
	return released
}

func (t *Tracker) Voice(e ecs.Entity) (Voice, bool) {
	v, ok := t.live[e]
	if !ok {
		return Voice{}, false
	}
	return *v, true
}

func (t *Tracker) Len() int {
	return len(t.order)
}

// Entities returns the entities with live voices in creation order.
func (t *Tracker) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), t.order...)
}
