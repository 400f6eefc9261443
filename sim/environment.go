package sim

import (
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultGravity points down the screen; y grows downward.
var DefaultGravity = cp.Vector{X: 0, Y: 900}

// Environment is the global force state owned by a Coordinator. Gravity
// persists until it is changed or explicitly reset to the base value.
type Environment struct {
	base    cp.Vector
	gravity cp.Vector

	windDirection float64
	windStrength  float64
}

func NewEnvironment(base cp.Vector) *Environment {
	return &Environment{base: base, gravity: base}
}

func (e *Environment) Gravity() cp.Vector {
	if e == nil {
		return cp.Vector{}
	}
	return e.gravity
}

func (e *Environment) SetGravity(g cp.Vector) {
	e.gravity = g
}

// ResetGravity restores the base gravity.
func (e *Environment) ResetGravity() {
	e.gravity = e.base
}

func (e *Environment) BaseGravity() cp.Vector {
	return e.base
}

// SetBaseGravity changes the value ResetGravity restores. The current gravity
// is left alone.
func (e *Environment) SetBaseGravity(g cp.Vector) {
	e.base = g
}

// SetWind sets the wind direction in radians and its strength.
func (e *Environment) SetWind(direction, strength float64) {
	e.windDirection = direction
	e.windStrength = strength
}

func (e *Environment) ResetWind() {
	e.windDirection, e.windStrength = 0, 0
}

func (e *Environment) Wind() (direction, strength float64) {
	return e.windDirection, e.windStrength
}

// WindForce is the horizontal projection of the wind. Wind never pushes
// along y.
func (e *Environment) WindForce() cp.Vector {
	if e == nil || e.windStrength == 0 {
		return cp.Vector{}
	}
	return cp.Vector{X: e.windStrength * math.Cos(e.windDirection)}
}
