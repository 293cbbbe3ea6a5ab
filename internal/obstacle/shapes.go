package obstacle

import (
	"math"

	"github.com/golang/geo/r3"
)

// Wall samples a vertical wall between from and to (their z is the base) up
// to height, every spacing meters.
func Wall(from, to r3.Vector, height, spacing float64) []r3.Vector {
	if spacing <= 0 || height < 0 {
		return nil
	}
	run := to.Sub(from)
	length := math.Hypot(run.X, run.Y)
	cols := int(length/spacing) + 1
	rows := int(height/spacing) + 1

	var pts []r3.Vector
	for c := 0; c < cols; c++ {
		f := 0.0
		if cols > 1 {
			f = float64(c) / float64(cols-1)
		}
		base := from.Add(run.Mul(f))
		for r := 0; r < rows; r++ {
			pts = append(pts, r3.Vector{X: base.X, Y: base.Y, Z: base.Z + float64(r)*spacing})
		}
	}
	return pts
}

// Pillar samples the surface of a vertical cylinder standing on center.
func Pillar(center r3.Vector, radius, height, spacing float64) []r3.Vector {
	if spacing <= 0 || radius <= 0 || height < 0 {
		return nil
	}
	around := int(2*math.Pi*radius/spacing) + 1
	rows := int(height/spacing) + 1

	pts := make([]r3.Vector, 0, around*rows)
	for a := 0; a < around; a++ {
		theta := 2 * math.Pi * float64(a) / float64(around)
		x := center.X + radius*math.Cos(theta)
		y := center.Y + radius*math.Sin(theta)
		for r := 0; r < rows; r++ {
			pts = append(pts, r3.Vector{X: x, Y: y, Z: center.Z + float64(r)*spacing})
		}
	}
	return pts
}
