package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/soundbox/common"
	"github.com/milk9111/soundbox/ecs"
	"github.com/milk9111/soundbox/ecs/component"
)

// WrapPosition moves p to the opposite edge once it is more than
// common.WrapMargin outside the playfield. The result snaps to the far margin
// and does not carry the overshoot.
func WrapPosition(p cp.Vector, width, height float64) (cp.Vector, bool) {
	m := common.WrapMargin
	out := p
	switch {
	case p.X < -m:
		out.X = width + m
	case p.X > width+m:
		out.X = -m
	}
	switch {
	case p.Y < -m:
		out.Y = height + m
	case p.Y > height+m:
		out.Y = -m
	}
	return out, out != p
}

// WrapSystem applies arena wrapping and clears the trail of every body it
// moves.
type WrapSystem struct {
	Width  float64
	Height float64
	OnWrap func(e ecs.Entity, from, to cp.Vector)
}

func NewWrapSystem(width, height float64) *WrapSystem {
	return &WrapSystem{Width: width, Height: height}
}

func (s *WrapSystem) Update(w *ecs.World, _ float64) {
	if s == nil || w == nil {
		return
	}
	trails := component.TrailComponent.Kind()
	ecs.ForEach(w, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody) {
		if pb.Body == nil {
			return
		}
		from := pb.Body.Position()
		to, wrapped := WrapPosition(from, s.Width, s.Height)
		if !wrapped {
			return
		}
		pb.Body.SetPosition(to)
		if tr, ok := ecs.Get(w, e, trails); ok {
			tr.Reset()
		}
		if s.OnWrap != nil {
			s.OnWrap(e, from, to)
		}
	})
}
