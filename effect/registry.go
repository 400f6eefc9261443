package effect

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/common"
	"github.com/milk9111/soundbox/ecs"
)

// Target is one dynamic body the registry may act on.
type Target struct {
	Entity ecs.Entity
	Body   *cp.Body
}

// Stats counts what a single Apply pass did.
type Stats struct {
	Forced     int
	Teleported int
	Launched   int
}

type entry struct {
	effect  Effect
	force   ForceEffect
	trigger TriggerEffect
}

// Registry applies an ordered list of effects to a body set once per tick.
// Contributions from overlapping effects add; no effect masks another.
type Registry struct {
	entries []entry
}

func NewRegistry(effects ...Effect) *Registry {
	r := &Registry{}
	for _, e := range effects {
		r.Add(e)
	}
	return r
}

// Add registers e after every existing effect. Effects that implement neither
// per-tick hook are ignored and Add reports false.
func (r *Registry) Add(e Effect) bool {
	if r == nil || e == nil {
		return false
	}
	ent := entry{effect: e}
	ent.force, _ = e.(ForceEffect)
	ent.trigger, _ = e.(TriggerEffect)
	if ent.force == nil && ent.trigger == nil {
		return false
	}
	r.entries = append(r.entries, ent)
	return true
}

// Remove unregisters e, keeping the order of the rest.
func (r *Registry) Remove(e Effect) bool {
	if r == nil {
		return false
	}
	for i, ent := range r.entries {
		if ent.effect == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the whole effect list, e.g. after a config reload.
func (r *Registry) Replace(effects []Effect) {
	if r == nil {
		return
	}
	r.entries = r.entries[:0]
	for _, e := range effects {
		r.Add(e)
	}
}

func (r *Registry) Effects() []Effect {
	if r == nil {
		return nil
	}
	out := make([]Effect, 0, len(r.entries))
	for _, ent := range r.entries {
		out = append(out, ent.effect)
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Evict drops e from every cooldown map. Call it when the body is destroyed.
func (r *Registry) Evict(e ecs.Entity) {
	if r == nil {
		return
	}
	for _, ent := range r.entries {
		if ent.trigger != nil {
			ent.trigger.Cooldowns().Evict(e)
		}
	}
}

// CooldownEntities returns every handle holding a cooldown entry in any effect.
func (r *Registry) CooldownEntities() []ecs.Entity {
	if r == nil {
		return nil
	}
	seen := make(map[ecs.Entity]struct{})
	var out []ecs.Entity
	for _, ent := range r.entries {
		if ent.trigger == nil {
			continue
		}
		for _, e := range ent.trigger.Cooldowns().Entities() {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// Apply commits pending parameter edits, then evaluates every active effect
// against each target's position at the start of the pass. Forces and
// impulses are summed per body; a teleport, if any fired, is applied first
// and clears linear and angular velocity.
func (r *Registry) Apply(targets []Target, now float64) Stats {
	var stats Stats
	if r == nil {
		return stats
	}
	for _, ent := range r.entries {
		ent.effect.commit()
	}

	for _, t := range targets {
		if t.Body == nil {
			continue
		}
		pos := t.Body.Position()

		var force, impulse cp.Vector
		var teleport *cp.Vector
		for _, ent := range r.entries {
			if !ent.effect.Active() {
				continue
			}
			if ent.force != nil {
				if f := ent.force.Force(pos); common.Finite(f) {
					force = force.Add(f)
				}
			}
			if ent.trigger != nil {
				out, ok := ent.trigger.Trigger(t.Entity, pos, now)
				if !ok {
					continue
				}
				if out.Teleported {
					p := out.Position
					teleport = &p
					stats.Teleported++
				} else {
					stats.Launched++
				}
				impulse = impulse.Add(out.Impulse)
			}
		}

		if teleport != nil {
			t.Body.SetPosition(*teleport)
			t.Body.SetVelocityVector(cp.Vector{})
			t.Body.SetAngularVelocity(0)
		}
		if impulse != (cp.Vector{}) {
			t.Body.ApplyImpulseAtWorldPoint(impulse, t.Body.Position())
		}
		if force != (cp.Vector{}) {
			t.Body.ApplyForceAtWorldPoint(force, t.Body.Position())
			stats.Forced++
		}
	}
	return stats
}
