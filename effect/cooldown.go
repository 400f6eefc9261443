package effect

import "github.com/milk9111/soundbox/ecs"

// Cooldowns maps a body handle to the simulation time it last triggered a
// discrete effect. Entries are evicted when the body is despawned.
type Cooldowns struct {
	last map[ecs.Entity]float64
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{last: make(map[ecs.Entity]float64)}
}

// Ready reports whether more than cooldown seconds have passed since e last
// triggered. A body that never triggered is always ready.
func (c *Cooldowns) Ready(e ecs.Entity, now, cooldown float64) bool {
	if c == nil {
		return true
	}
	t, ok := c.last[e]
	if !ok {
		return true
	}
	return now-t > cooldown
}

// Mark records a trigger at now. Timestamps never move backwards.
func (c *Cooldowns) Mark(e ecs.Entity, now float64) {
	if c == nil {
		return
	}
	if c.last == nil {
		c.last = make(map[ecs.Entity]float64)
	}
	if t, ok := c.last[e]; ok && t > now {
		return
	}
	c.last[e] = now
}

func (c *Cooldowns) Evict(e ecs.Entity) {
	if c == nil {
		return
	}
	delete(c.last, e)
}

func (c *Cooldowns) Len() int {
	if c == nil {
		return 0
	}
	return len(c.last)
}

// Entities returns the handles that currently hold an entry.
func (c *Cooldowns) Entities() []ecs.Entity {
	if c == nil {
		return nil
	}
	out := make([]ecs.Entity, 0, len(c.last))
	for e := range c.last {
		out = append(out, e)
	}
	return out
}
