package trajectory

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/dynamo"
)

// pointMass is a triple integrator driven by jerk:
// x = [p, v, a], u = j, dx/dt = [v, a, j].
type pointMass struct{}

func (pointMass) StateDim() int   { return 9 }
func (pointMass) ControlDim() int { return 3 }

func (pointMass) Derive(x dynamo.Vector, u dynamo.Control, t float64) dynamo.Vector {
	dx := make(dynamo.Vector, 9)
	copy(dx[0:6], x[3:9])
	copy(dx[6:9], u)
	return dx
}

func pack(s dynamo.SimulationState) dynamo.Vector {
	return dynamo.Vector{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z,
		s.Acceleration.X, s.Acceleration.Y, s.Acceleration.Z,
	}
}

func unpack(x dynamo.Vector, t float64) dynamo.SimulationState {
	return dynamo.SimulationState{
		Position:     r3.Vector{X: x[0], Y: x[1], Z: x[2]},
		Velocity:     r3.Vector{X: x[3], Y: x[4], Z: x[5]},
		Acceleration: r3.Vector{X: x[6], Y: x[7], Z: x[8]},
		Time:         t,
	}
}
