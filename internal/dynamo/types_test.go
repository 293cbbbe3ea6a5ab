package dynamo

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

func TestVector_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state Vector
		valid bool
	}{
		{"empty", Vector{}, true},
		{"normal", Vector{1.0, 2.0, 3.0}, true},
		{"with NaN", Vector{1.0, math.NaN()}, false},
		{"with +Inf", Vector{1.0, math.Inf(1)}, false},
		{"with -Inf", Vector{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVector_Norm(t *testing.T) {
	tests := []struct {
		state    Vector
		expected float64
	}{
		{Vector{3, 4}, 5.0},
		{Vector{0, 0}, 0.0},
		{Vector{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestVector_CloneIsIndependent(t *testing.T) {
	a := Vector{1, 2, 3}
	b := a.Clone()
	b[0] = 9
	if a[0] != 1 {
		t.Errorf("clone aliases original: %v", a)
	}
}

func TestSimulationState_IsValid(t *testing.T) {
	s := StateAt(1.5, r3.Vector{X: 1, Y: 2, Z: 3})
	if !s.IsValid() {
		t.Errorf("expected %v to be valid", s)
	}
	s.Velocity.Y = math.NaN()
	if s.IsValid() {
		t.Error("expected NaN velocity to be invalid")
	}
}

func TestStepError_Unwrap(t *testing.T) {
	err := &StepError{Step: 3, Time: 0.15, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected StepError to unwrap to ErrInvalidState")
	}
	if err.Error() == "" {
		t.Error("expected non-empty message")
	}
}
