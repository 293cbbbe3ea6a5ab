package metrics

import (
	"math"

	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/sim"
)

// NoClearance is reported when there was nothing to measure against.
const NoClearance = -1.0

// MinClearance is the smallest distance between the vehicle and an obstacle
// point over the flight.
type MinClearance struct {
	name      string
	obstacles obstacle.Index
	min       float64
}

func NewMinClearance(obstacles obstacle.Index) *MinClearance {
	return &MinClearance{name: "min_clearance", obstacles: obstacles, min: math.Inf(1)}
}

func (c *MinClearance) Name() string { return c.name }

func (c *MinClearance) Observe(step sim.Step, _ *planner.Tree) {
	if c.obstacles == nil {
		return
	}
	if _, d, ok := c.obstacles.Nearest(step.State.Position); ok {
		c.min = math.Min(c.min, d)
	}
}

func (c *MinClearance) Value() float64 {
	if math.IsInf(c.min, 1) {
		return NoClearance
	}
	return c.min
}

func (c *MinClearance) Reset() { c.min = math.Inf(1) }
