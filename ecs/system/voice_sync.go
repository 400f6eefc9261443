package system

import (
	"github.com/milk9111/soundbox/common"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
	"github.com/milk9111/soundbox/voice"
)

const defaultImpactScale = 500.0

// VoiceSyncSystem diffs sound emitters against the tracker's live voices,
// forwards impact parameters and sends one batched position update.
type VoiceSyncSystem struct {
	Tracker *voice.Tracker
	// ImpactScale is the impulse magnitude that maps to a full-scale impact.
	ImpactScale float64
}

func NewVoiceSyncSystem(tracker *voice.Tracker, impactScale float64) *VoiceSyncSystem {
	if impactScale <= 0 {
		impactScale = defaultImpactScale
	}
	return &VoiceSyncSystem{Tracker: tracker, ImpactScale: impactScale}
}

func (s *VoiceSyncSystem) Update(w *ecs.World, _ float64) {
	if s == nil || s.Tracker == nil || w == nil {
		return
	}
	s.Tracker.Reconcile(w)

	ecs.ForEach2(w, component.SoundEmitterComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, em *component.SoundEmitter, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		p := pb.Body.Position()
		if !s.Tracker.Move(e, p.X, p.Y) {
			s.Tracker.Register(e, *em, p.X, p.Y)
		}
	})

	ecs.ForEach(w, component.ImpactComponent.Kind(), func(e ecs.Entity, imp *component.Impact) {
		if imp.Impulse <= 0 {
			return
		}
		s.Tracker.SetParameter(e, "impact", common.Clamp01(imp.Impulse/s.ImpactScale))
		imp.Impulse = 0
	})

	s.Tracker.Flush()
}
