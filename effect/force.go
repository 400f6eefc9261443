// Package effect implements the spatial force generators that act on dynamic
// bodies and the registry that applies them once per tick.
package effect

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/common"
	"github.com/milk9111/soundbox/ecs"
)

// GravityWellForce pulls pos toward center with inverse-square strength.
// Bodies at or beyond radius, a body exactly on the center, and distances so
// small the result overflows all get no force.
func GravityWellForce(pos, center cp.Vector, radius, strength float64) cp.Vector {
	d := center.Sub(pos)
	r := d.Length()
	if r >= radius || r == 0 {
		return cp.Vector{}
	}
	f := d.Mult(1 / r).Mult(strength / (r * r))
	if !common.Finite(f) {
		return cp.Vector{}
	}
	return f
}

// VortexForce pushes pos tangentially around center. The magnitude falls off
// linearly from strength at the center to zero at radius; sign picks the
// rotation direction (+1 counter-clockwise).
func VortexForce(pos, center cp.Vector, radius, strength, sign float64) cp.Vector {
	rel := pos.Sub(center)
	r := rel.Length()
	if r >= radius || r == 0 {
		return cp.Vector{}
	}
	tangent := rel.Mult(1 / r).Perp().Mult(sign)
	f := tangent.Mult(strength * (1 - r/radius))
	if !common.Finite(f) {
		return cp.Vector{}
	}
	return f
}

// FieldForce returns strength while pos lies inside bounds (edges included).
func FieldForce(pos cp.Vector, bounds cp.BB, strength cp.Vector) cp.Vector {
	if !bounds.ContainsVect(pos) {
		return cp.Vector{}
	}
	return strength
}

// Teleport reports the exit position when e is within radius of entrance and
// its cooldown has elapsed, recording now as e's last trigger time.
func Teleport(e ecs.Entity, pos, entrance, exit cp.Vector, radius, cooldown float64, last *Cooldowns, now float64) (cp.Vector, bool) {
	if pos.Distance(entrance) >= radius {
		return cp.Vector{}, false
	}
	if !last.Ready(e, now, cooldown) {
		return cp.Vector{}, false
	}
	last.Mark(e, now)
	return exit, true
}

// Launch reports an instantaneous impulse of magnitude force along angle
// under the same radius and cooldown gate as Teleport.
func Launch(e ecs.Entity, pos, launcher cp.Vector, radius, cooldown, force, angle float64, last *Cooldowns, now float64) (cp.Vector, bool) {
	if pos.Distance(launcher) >= radius {
		return cp.Vector{}, false
	}
	if !last.Ready(e, now, cooldown) {
		return cp.Vector{}, false
	}
	last.Mark(e, now)
	return common.Polar(angle).Mult(force), true
}
