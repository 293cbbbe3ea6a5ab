// Package speedlimit bounds vehicle speed by the distance available to stop.
//
// The model is a jerk-limited deceleration: acceleration ramps to the limit at
// the maximum jerk, is held, and the vehicle comes to rest within the given
// braking distance.
package speedlimit

import "math"

// MaxSpeedFromBrakingDistance returns the highest speed from which the vehicle
// can still stop within distance. It is non-decreasing in distance and returns
// 0 for non-positive inputs.
func MaxSpeedFromBrakingDistance(jerk, accel, distance float64) float64 {
	if jerk <= 0 || accel <= 0 || distance <= 0 {
		return 0
	}
	b := 4 * accel * accel / jerk
	c := -2 * accel * distance
	return 0.5 * (-b + math.Sqrt(b*b-4*c))
}

// BrakingDistance is the inverse of MaxSpeedFromBrakingDistance: the distance
// needed to stop from speed v.
func BrakingDistance(jerk, accel, v float64) float64 {
	if jerk <= 0 || accel <= 0 || v <= 0 {
		return 0
	}
	b := 4 * accel * accel / jerk
	return (v*v + b*v) / (2 * accel)
}

// Clamp returns the smallest of the braking-distance limits for each distance
// and the configured ceiling.
func Clamp(jerk, accel, ceiling float64, distances ...float64) float64 {
	limit := ceiling
	for _, d := range distances {
		limit = math.Min(limit, MaxSpeedFromBrakingDistance(jerk, accel, d))
	}
	return limit
}
