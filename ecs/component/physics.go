package component

import "github.com/jakecoffman/cp"

type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapeBox     ShapeKind = "box"
	ShapeSegment ShapeKind = "segment"
)

// PhysicsBody stores Chipmunk2D runtime data for one dynamic entity. Shape is
// the single collision shape attached to Body before either joins the space.
type PhysicsBody struct {
	Body       *cp.Body
	Shape      *cp.Shape
	Kind       ShapeKind
	Radius     float64
	Width      float64
	Height     float64
	Mass       float64
	Friction   float64
	Elasticity float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
