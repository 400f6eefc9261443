package system

import "github.com/jakecoffman/cp"

// Environment supplies the global forces for the current tick.
type Environment interface {
	Gravity() cp.Vector
	WindForce() cp.Vector
}
