package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/num/quat"
)

func TestRotateYaw(t *testing.T) {
	g := NewWithT(t)

	q := FromYaw(math.Pi / 2)
	v := Rotate(q, r3.Vector{X: 1})

	g.Expect(v.X).To(BeNumerically("~", 0, 1e-9))
	g.Expect(v.Y).To(BeNumerically("~", 1, 1e-9))
	g.Expect(v.Z).To(BeNumerically("~", 0, 1e-9))
}

func TestRotateIdentity(t *testing.T) {
	g := NewWithT(t)

	v := r3.Vector{X: 0.707, Y: -0.707, Z: 0}
	g.Expect(Rotate(Identity, v).Sub(v).Norm()).To(BeNumerically("<", 1e-12))
}

func TestRotatePreservesLength(t *testing.T) {
	g := NewWithT(t)

	q := Normalize(FromRPY(0.3, -0.2, 1.1))
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	g.Expect(Rotate(q, v).Norm()).To(BeNumerically("~", v.Norm(), 1e-9))
}

func TestYawRoundTrip(t *testing.T) {
	g := NewWithT(t)

	for _, yaw := range []float64{-3, -1, 0, 0.5, 2.9} {
		g.Expect(Yaw(FromYaw(yaw))).To(BeNumerically("~", yaw, 1e-9))
		g.Expect(Yaw(FromRPY(0, 0, yaw))).To(BeNumerically("~", yaw, 1e-9))
	}
}

func TestNormalizeZero(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Normalize(quat.Number{})).To(Equal(Identity))
	g.Expect(quat.Abs(Normalize(quat.Scale(3, FromYaw(1))))).To(BeNumerically("~", 1, 1e-12))
}

func TestClampNorm(t *testing.T) {
	g := NewWithT(t)

	g.Expect(ClampNorm(r3.Vector{X: 3, Y: 4}, 10)).To(Equal(r3.Vector{X: 3, Y: 4}))
	g.Expect(ClampNorm(r3.Vector{X: 3, Y: 4}, 1).Norm()).To(BeNumerically("~", 1, 1e-12))
	g.Expect(ClampNorm(r3.Vector{X: 3}, 0)).To(Equal(r3.Vector{}))
}

func TestHorizontalNorm(t *testing.T) {
	g := NewWithT(t)
	g.Expect(HorizontalNorm(r3.Vector{X: 3, Y: 4, Z: 100})).To(BeNumerically("~", 5, 1e-12))
	g.Expect(Horizontal(r3.Vector{X: 1, Y: 2, Z: 3})).To(Equal(r3.Vector{X: 1, Y: 2}))
}

func TestAngleBetween(t *testing.T) {
	g := NewWithT(t)
	g.Expect(AngleBetween(r3.Vector{X: 1}, r3.Vector{Y: 1})).To(BeNumerically("~", math.Pi/2, 1e-12))
	g.Expect(AngleBetween(r3.Vector{}, r3.Vector{Y: 1})).To(BeZero())
}
