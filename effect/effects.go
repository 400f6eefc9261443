package effect

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/ecs"
)

// Effect is one spatial force generator held by a Registry. Every variant
// implements at least one of ForceEffect or TriggerEffect; the registry
// resolves which once, when the effect is added.
type Effect interface {
	Kind() Kind
	Active() bool
	SetActive(active bool)
	SetPosition(p cp.Vector)
	commit()
}

// ForceEffect contributes a continuous force to every body it covers.
type ForceEffect interface {
	Effect
	Force(pos cp.Vector) cp.Vector
}

// Outcome describes what a discrete effect did to one body.
type Outcome struct {
	Teleported bool
	Position   cp.Vector
	Impulse    cp.Vector
}

// TriggerEffect fires discretely, gated by a per-body cooldown.
type TriggerEffect interface {
	Effect
	Trigger(e ecs.Entity, pos cp.Vector, now float64) (Outcome, bool)
	Cooldowns() *Cooldowns
}

type Kind string

const (
	KindGravityWell    Kind = "gravity_well"
	KindVortex         Kind = "vortex"
	KindForceField     Kind = "force_field"
	KindTeleporter     Kind = "teleporter"
	KindSpringLauncher Kind = "spring_launcher"
)

type GravityWellParams struct {
	Active   bool
	Position cp.Vector
	Radius   float64
	Strength float64
}

type GravityWell struct {
	staged[GravityWellParams]
}

func NewGravityWell(p GravityWellParams) *GravityWell {
	return &GravityWell{staged[GravityWellParams]{cur: p}}
}

func (g *GravityWell) Kind() Kind              { return KindGravityWell }
func (g *GravityWell) Active() bool            { return g.cur.Active }
func (g *GravityWell) SetActive(active bool)   { g.edit(func(p *GravityWellParams) { p.Active = active }) }
func (g *GravityWell) SetPosition(v cp.Vector) { g.edit(func(p *GravityWellParams) { p.Position = v }) }
func (g *GravityWell) SetRadius(r float64)     { g.edit(func(p *GravityWellParams) { p.Radius = r }) }
func (g *GravityWell) SetStrength(s float64)   { g.edit(func(p *GravityWellParams) { p.Strength = s }) }

func (g *GravityWell) Force(pos cp.Vector) cp.Vector {
	return GravityWellForce(pos, g.cur.Position, g.cur.Radius, g.cur.Strength)
}

type VortexParams struct {
	Active   bool
	Position cp.Vector
	Radius   float64
	Strength float64
	// Sign is +1 for counter-clockwise rotation and -1 for clockwise.
	Sign float64
}

type Vortex struct {
	staged[VortexParams]
}

func NewVortex(p VortexParams) *Vortex {
	if p.Sign == 0 {
		p.Sign = 1
	}
	return &Vortex{staged[VortexParams]{cur: p}}
}

func (v *Vortex) Kind() Kind              { return KindVortex }
func (v *Vortex) Active() bool            { return v.cur.Active }
func (v *Vortex) SetActive(active bool)   { v.edit(func(p *VortexParams) { p.Active = active }) }
func (v *Vortex) SetPosition(c cp.Vector) { v.edit(func(p *VortexParams) { p.Position = c }) }
func (v *Vortex) SetRadius(r float64)     { v.edit(func(p *VortexParams) { p.Radius = r }) }
func (v *Vortex) SetStrength(s float64)   { v.edit(func(p *VortexParams) { p.Strength = s }) }

func (v *Vortex) Force(pos cp.Vector) cp.Vector {
	return VortexForce(pos, v.cur.Position, v.cur.Radius, v.cur.Strength, v.cur.Sign)
}

type ForceFieldParams struct {
	Active   bool
	Bounds   cp.BB
	Strength cp.Vector
}

type ForceField struct {
	staged[ForceFieldParams]
}

func NewForceField(p ForceFieldParams) *ForceField {
	return &ForceField{staged[ForceFieldParams]{cur: p}}
}

func (f *ForceField) Kind() Kind            { return KindForceField }
func (f *ForceField) Active() bool          { return f.cur.Active }
func (f *ForceField) SetActive(active bool) { f.edit(func(p *ForceFieldParams) { p.Active = active }) }

// SetPosition recenters the field's bounds on c, keeping their size.
func (f *ForceField) SetPosition(c cp.Vector) {
	f.edit(func(p *ForceFieldParams) {
		hw := (p.Bounds.R - p.Bounds.L) / 2
		hh := (p.Bounds.T - p.Bounds.B) / 2
		p.Bounds = cp.BB{L: c.X - hw, B: c.Y - hh, R: c.X + hw, T: c.Y + hh}
	})
}

func (f *ForceField) SetBounds(bb cp.BB)            { f.edit(func(p *ForceFieldParams) { p.Bounds = bb }) }
func (f *ForceField) SetStrength(s cp.Vector)       { f.edit(func(p *ForceFieldParams) { p.Strength = s }) }
func (f *ForceField) Force(pos cp.Vector) cp.Vector { return FieldForce(pos, f.cur.Bounds, f.cur.Strength) }

type TeleporterParams struct {
	Active   bool
	Entrance cp.Vector
	Exit     cp.Vector
	Radius   float64
	Cooldown float64
}

type Teleporter struct {
	staged[TeleporterParams]
	last *Cooldowns
}

func NewTeleporter(p TeleporterParams) *Teleporter {
	return &Teleporter{staged: staged[TeleporterParams]{cur: p}, last: NewCooldowns()}
}

func (t *Teleporter) Kind() Kind              { return KindTeleporter }
func (t *Teleporter) Active() bool            { return t.cur.Active }
func (t *Teleporter) SetActive(active bool)   { t.edit(func(p *TeleporterParams) { p.Active = active }) }
func (t *Teleporter) SetPosition(v cp.Vector) { t.edit(func(p *TeleporterParams) { p.Entrance = v }) }
func (t *Teleporter) SetExit(v cp.Vector)     { t.edit(func(p *TeleporterParams) { p.Exit = v }) }
func (t *Teleporter) SetRadius(r float64)     { t.edit(func(p *TeleporterParams) { p.Radius = r }) }
func (t *Teleporter) SetCooldown(s float64)   { t.edit(func(p *TeleporterParams) { p.Cooldown = s }) }
func (t *Teleporter) Cooldowns() *Cooldowns   { return t.last }

func (t *Teleporter) Trigger(e ecs.Entity, pos cp.Vector, now float64) (Outcome, bool) {
	exit, ok := Teleport(e, pos, t.cur.Entrance, t.cur.Exit, t.cur.Radius, t.cur.Cooldown, t.last, now)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{Teleported: true, Position: exit}, true
}

type SpringLauncherParams struct {
	Active   bool
	Position cp.Vector
	Radius   float64
	Cooldown float64
	Force    float64
	// Angle is the launch direction in radians, 0 along +x.
	Angle float64
}

type SpringLauncher struct {
	staged[SpringLauncherParams]
	last *Cooldowns
}

func NewSpringLauncher(p SpringLauncherParams) *SpringLauncher {
	return &SpringLauncher{staged: staged[SpringLauncherParams]{cur: p}, last: NewCooldowns()}
}

func (s *SpringLauncher) Kind() Kind              { return KindSpringLauncher }
func (s *SpringLauncher) Active() bool            { return s.cur.Active }
func (s *SpringLauncher) SetActive(active bool)   { s.edit(func(p *SpringLauncherParams) { p.Active = active }) }
func (s *SpringLauncher) SetPosition(v cp.Vector) { s.edit(func(p *SpringLauncherParams) { p.Position = v }) }
func (s *SpringLauncher) SetRadius(r float64)     { s.edit(func(p *SpringLauncherParams) { p.Radius = r }) }
func (s *SpringLauncher) SetCooldown(c float64)   { s.edit(func(p *SpringLauncherParams) { p.Cooldown = c }) }
func (s *SpringLauncher) SetForce(f float64)      { s.edit(func(p *SpringLauncherParams) { p.Force = f }) }
func (s *SpringLauncher) SetAngle(a float64)      { s.edit(func(p *SpringLauncherParams) { p.Angle = a }) }
func (s *SpringLauncher) Cooldowns() *Cooldowns   { return s.last }

func (s *SpringLauncher) Trigger(e ecs.Entity, pos cp.Vector, now float64) (Outcome, bool) {
	impulse, ok := Launch(e, pos, s.cur.Position, s.cur.Radius, s.cur.Cooldown, s.cur.Force, s.cur.Angle, s.last, now)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{Impulse: impulse}, true
}
