package integrators

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/san-kum/lookahead/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.Vector, u dynamo.Control, t float64) dynamo.Vector {
	return dynamo.Vector{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int   { return 2 }
func (s *simpleDynamics) ControlDim() int { return 0 }

// constantJerk integrates p, v, a under a constant jerk control u[0].
type constantJerk struct{}

func (c *constantJerk) Derive(x dynamo.Vector, u dynamo.Control, t float64) dynamo.Vector {
	return dynamo.Vector{x[1], x[2], u[0]}
}

func (c *constantJerk) StateDim() int   { return 3 }
func (c *constantJerk) ControlDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x := dynamo.Vector{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4ExactForConstantJerk(t *testing.T) {
	integ := NewRK4()
	x := dynamo.Vector{0, 0, 0}
	u := dynamo.Control{6}

	for i := 0; i < 10; i++ {
		x = integ.Step(&constantJerk{}, x, u, float64(i)*0.1, 0.1)
	}

	// p = j t^3 / 6 at t = 1
	if math.Abs(x[0]-1.0) > 1e-9 {
		t.Errorf("expected p=1, got %.12f", x[0])
	}
	if math.Abs(x[1]-3.0) > 1e-9 {
		t.Errorf("expected v=3, got %.12f", x[1])
	}
	if math.Abs(x[2]-6.0) > 1e-9 {
		t.Errorf("expected a=6, got %.12f", x[2])
	}
}

func TestEulerFirstOrder(t *testing.T) {
	integ := NewEuler()
	x := integ.Step(&constantJerk{}, dynamo.Vector{0, 1, 0}, dynamo.Control{0}, 0, 0.5)
	if x[0] != 0.5 || x[1] != 1 || x[2] != 0 {
		t.Errorf("unexpected euler step: %v", x)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"", "euler", "rk4"} {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}

	_, err := New("leapfrog")
	if !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	if got := Names(); len(got) != 2 || got[0] != "euler" || got[1] != "rk4" {
		t.Errorf("unexpected names: %v", got)
	}
}
