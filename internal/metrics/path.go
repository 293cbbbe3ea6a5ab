package metrics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/sim"
)

// PathLength is the distance flown from a start position.
type PathLength struct {
	name     string
	start    r3.Vector
	last     r3.Vector
	segments []float64
}

func NewPathLength(start r3.Vector) *PathLength {
	return &PathLength{name: "path_length", start: start, last: start}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(step sim.Step, _ *planner.Tree) {
	pos := step.State.Position
	p.segments = append(p.segments, pos.Sub(p.last).Norm())
	p.last = pos
}

func (p *PathLength) Value() float64 {
	if len(p.segments) == 0 {
		return 0
	}
	return floats.Sum(p.segments)
}

func (p *PathLength) Reset() {
	p.segments = p.segments[:0]
	p.last = p.start
}
