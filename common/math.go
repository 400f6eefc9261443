package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// WrapMargin is how far past the playfield edge a body travels before it is
// moved to the opposite side.
const WrapMargin = 50.0

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 clamps v into [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// Polar returns the unit vector for angle radians, 0 along +x and
// counter-clockwise positive.
func Polar(angle float64) cp.Vector {
	return cp.Vector{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Finite reports whether both components are finite.
func Finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
