// Package geom holds the small amount of 3-D math the planner needs on top of
// r3 vectors: quaternion rotation and planar projections.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Identity is the no-rotation orientation.
var Identity = quat.Number{Real: 1}

// FromYaw returns the rotation of yaw radians about +z.
func FromYaw(yaw float64) quat.Number {
	half := yaw / 2
	return quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
}

// FromRPY returns the rotation for roll, pitch and yaw applied in z-y-x order.
func FromRPY(roll, pitch, yaw float64) quat.Number {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)
	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// Normalize scales q to unit length. A zero quaternion becomes Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Rotate returns v rotated by the unit quaternion q (q·v·q*).
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Yaw extracts the heading of q about +z.
func Yaw(q quat.Number) float64 {
	return math.Atan2(2*(q.Real*q.Kmag+q.Imag*q.Jmag), 1-2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag))
}

// Horizontal drops the z component.
func Horizontal(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y}
}

// HorizontalNorm is the length of v projected onto the xy plane.
func HorizontalNorm(v r3.Vector) float64 {
	return math.Hypot(v.X, v.Y)
}

// ClampNorm scales v down so its length is at most max.
func ClampNorm(v r3.Vector, max float64) r3.Vector {
	if max <= 0 {
		return r3.Vector{}
	}
	n := v.Norm()
	if n <= max {
		return v
	}
	return v.Mul(max / n)
}

// AngleBetween returns the unsigned angle between a and b, or 0 when either is zero.
func AngleBetween(a, b r3.Vector) float64 {
	if a.Norm2() == 0 || b.Norm2() == 0 {
		return 0
	}
	return float64(a.Angle(b))
}
