package dynamo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// SimulationState is one sample of a simulated vehicle trajectory.
type SimulationState struct {
	Position     r3.Vector
	Velocity     r3.Vector
	Acceleration r3.Vector
	Time         float64
}

// StateAt returns a state resting at position p at time t.
func StateAt(t float64, p r3.Vector) SimulationState {
	return SimulationState{Position: p, Time: t}
}

func (s SimulationState) IsValid() bool {
	return validVector(s.Position) && validVector(s.Velocity) &&
		validVector(s.Acceleration) && !math.IsNaN(s.Time) && !math.IsInf(s.Time, 0)
}

func (s SimulationState) String() string {
	return fmt.Sprintf("t=%.3f p=(%.2f, %.2f, %.2f) v=(%.2f, %.2f, %.2f)",
		s.Time, s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z)
}

func validVector(v r3.Vector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Limits bounds the kinodynamics of generated trajectories.
type Limits struct {
	MaxXYVelocityNorm   float64 `yaml:"max_xy_velocity_norm"`
	MaxZVelocity        float64 `yaml:"max_z_velocity"`
	MinZVelocity        float64 `yaml:"min_z_velocity"`
	MaxAccelerationNorm float64 `yaml:"max_acceleration_norm"`
	MaxJerkNorm         float64 `yaml:"max_jerk_norm"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxXYVelocityNorm:   3.0,
		MaxZVelocity:        1.0,
		MinZVelocity:        -0.5,
		MaxAccelerationNorm: 5.0,
		MaxJerkNorm:         20.0,
	}
}

// Vector is a flat state vector as consumed by integrators.
type Vector []float64

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

type Control []float64

// System is an ODE dX/dt = f(X, u, t).
type System interface {
	Derive(x Vector, u Control, t float64) Vector
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x Vector, u Control, t float64, dt float64) Vector
}
