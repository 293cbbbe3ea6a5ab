package speedlimit

import (
	"math"
	"testing"
)

func TestMaxSpeedFromBrakingDistance(t *testing.T) {
	tests := []struct {
		name                  string
		jerk, accel, distance float64
		wantZero              bool
	}{
		{"nominal", 20, 5, 10, false},
		{"zero distance", 20, 5, 0, true},
		{"negative distance", 20, 5, -1, true},
		{"zero jerk", 0, 5, 10, true},
		{"zero accel", 20, 0, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxSpeedFromBrakingDistance(tt.jerk, tt.accel, tt.distance)
			if tt.wantZero && got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
			if !tt.wantZero && got <= 0 {
				t.Errorf("expected positive speed, got %f", got)
			}
		})
	}
}

func TestMaxSpeedMonotonic(t *testing.T) {
	prev := 0.0
	for d := 0.0; d <= 50; d += 0.25 {
		v := MaxSpeedFromBrakingDistance(20, 5, d)
		if v < prev {
			t.Fatalf("speed decreased at d=%.2f: %f < %f", d, v, prev)
		}
		prev = v
	}
}

func TestBrakingDistanceInverse(t *testing.T) {
	for _, d := range []float64{0.5, 1, 4, 15, 40} {
		v := MaxSpeedFromBrakingDistance(20, 5, d)
		back := BrakingDistance(20, 5, v)
		if math.Abs(back-d) > 1e-9 {
			t.Errorf("d=%.2f: round trip gave %.12f", d, back)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(20, 5, 3, 1000, 1000); got != 3 {
		t.Errorf("expected ceiling 3, got %f", got)
	}

	near := MaxSpeedFromBrakingDistance(20, 5, 0.5)
	if got := Clamp(20, 5, 3, 0.5, 1000); got != near {
		t.Errorf("expected %f, got %f", near, got)
	}

	if got := Clamp(20, 5, 3); got != 3 {
		t.Errorf("expected ceiling with no distances, got %f", got)
	}
}
