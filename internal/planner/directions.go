package planner

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/lookahead/internal/geom"
)

// candidateDirections is the branching set of the search in the body frame:
// the six axis directions followed by the four horizontal diagonals.
var candidateDirections = [...]r3.Vector{
	{X: 1}, {Y: 1}, {Z: 1},
	{X: -1}, {Y: -1}, {Z: -1},
	{X: 0.707, Y: 0.707}, {X: 0.707, Y: -0.707},
	{X: -0.707, Y: 0.707}, {X: -0.707, Y: -0.707},
}

// Directions returns a copy of the body-frame candidate set.
func Directions() []r3.Vector {
	out := make([]r3.Vector, len(candidateDirections))
	copy(out, candidateDirections[:])
	return out
}

// RotatedDirections returns the candidate set expressed in the planning frame.
func RotatedDirections(q quat.Number) []r3.Vector {
	q = geom.Normalize(q)
	out := make([]r3.Vector, len(candidateDirections))
	for i, d := range candidateDirections {
		out[i] = geom.Rotate(q, d)
	}
	return out
}
