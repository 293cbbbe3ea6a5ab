// Package trajectory simulates short jerk-limited point-mass trajectories.
//
// A [Simulator] is seeded with a start state and kinodynamic limits. Each call
// to [Simulator.Generate] steers toward a direction for a duration and yields
// the states reached at every integration step. The simulator keeps the last
// state it produced, so a sequence cannot be replayed: generating again
// continues from where the previous sequence stopped.
package trajectory

import (
	"iter"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/integrators"
)

const (
	// DefaultStep is the integration step used by the planner, in seconds.
	DefaultStep = 0.05

	// velocityResponse is the time constant of the velocity loop, in seconds.
	velocityResponse = 0.5
)

type Simulator struct {
	limits dynamo.Limits
	state  dynamo.SimulationState
	step   float64
	integ  dynamo.Integrator
	model  pointMass
}

type Option func(*Simulator)

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Simulator) { s.integ = integ }
}

// New returns a simulator starting at start. A non-positive step falls back to
// DefaultStep.
func New(limits dynamo.Limits, start dynamo.SimulationState, step float64, opts ...Option) *Simulator {
	if step <= 0 || math.IsNaN(step) {
		step = DefaultStep
	}
	s := &Simulator{
		limits: limits,
		state:  start,
		step:   step,
		integ:  integrators.NewRK4(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory returns a constructor for simulators stepping with the named integrator.
func Factory(integrator string) (func(dynamo.Limits, dynamo.SimulationState, float64) *Simulator, error) {
	if _, err := integrators.New(integrator); err != nil {
		return nil, err
	}
	return func(limits dynamo.Limits, start dynamo.SimulationState, step float64) *Simulator {
		integ, _ := integrators.New(integrator)
		return New(limits, start, step, WithIntegrator(integ))
	}, nil
}

// State is the last state the simulator reached.
func (s *Simulator) State() dynamo.SimulationState { return s.state }

func (s *Simulator) Step() float64 { return s.step }

// Generate steers toward direction for duration seconds. The returned sequence
// yields round(duration/step) states and can be ranged over once.
func (s *Simulator) Generate(direction r3.Vector, duration float64) iter.Seq[dynamo.SimulationState] {
	n := 0
	if duration > 0 {
		n = int(math.Round(duration / s.step))
	}
	target := s.desiredVelocity(direction)
	consumed := false

	return func(yield func(dynamo.SimulationState) bool) {
		if consumed {
			return
		}
		consumed = true
		for i := 0; i < n; i++ {
			s.state = s.advance(target)
			if !yield(s.state) {
				return
			}
		}
	}
}

// Last drains seq and returns its final state, or fallback when it is empty.
func Last(seq iter.Seq[dynamo.SimulationState], fallback dynamo.SimulationState) dynamo.SimulationState {
	last := fallback
	for st := range seq {
		last = st
	}
	return last
}

func (s *Simulator) desiredVelocity(direction r3.Vector) r3.Vector {
	if direction.Norm2() == 0 {
		return r3.Vector{}
	}
	d := direction.Normalize()
	v := geom.Horizontal(d).Mul(s.limits.MaxXYVelocityNorm)
	if d.Z > 0 {
		v.Z = d.Z * s.limits.MaxZVelocity
	} else {
		v.Z = -d.Z * s.limits.MinZVelocity
	}
	return v
}

func (s *Simulator) advance(target r3.Vector) dynamo.SimulationState {
	cur := s.state
	accelGoal := geom.ClampNorm(target.Sub(cur.Velocity).Mul(1/velocityResponse), s.limits.MaxAccelerationNorm)
	jerk := geom.ClampNorm(accelGoal.Sub(cur.Acceleration).Mul(1/s.step), s.limits.MaxJerkNorm)

	x := s.integ.Step(&s.model, pack(cur), dynamo.Control{jerk.X, jerk.Y, jerk.Z}, cur.Time, s.step)

	next := unpack(x, cur.Time+s.step)
	next.Acceleration = geom.ClampNorm(next.Acceleration, s.limits.MaxAccelerationNorm)
	next.Velocity = s.clampVelocity(next.Velocity)
	return next
}

func (s *Simulator) clampVelocity(v r3.Vector) r3.Vector {
	xy := geom.ClampNorm(geom.Horizontal(v), s.limits.MaxXYVelocityNorm)
	xy.Z = math.Max(math.Min(v.Z, s.limits.MaxZVelocity), s.limits.MinZVelocity)
	return xy
}
