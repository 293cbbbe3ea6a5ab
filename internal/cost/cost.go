// Package cost scores candidate tree nodes for the look-ahead search.
package cost

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/obstacle"
)

// Parameters weight the individual terms of an edge cost.
type Parameters struct {
	GoalCostParam         float64 `yaml:"goal_cost_param"`
	HeadingCostParam      float64 `yaml:"heading_cost_param"`
	SmoothCostParam       float64 `yaml:"smooth_cost_param"`
	HeightChangeCostParam float64 `yaml:"height_change_cost_param"`
	ObstacleCostParam     float64 `yaml:"obstacle_cost_param"`
	StepCostParam         float64 `yaml:"step_cost_param"`
	CollisionRadius       float64 `yaml:"collision_radius"`
	CollisionCost         float64 `yaml:"collision_cost"`
}

func DefaultParameters() Parameters {
	return Parameters{
		GoalCostParam:         0.1,
		HeadingCostParam:      0.5,
		SmoothCostParam:       0.05,
		HeightChangeCostParam: 0.5,
		ObstacleCostParam:     8.5,
		StepCostParam:         1.0,
		CollisionRadius:       0.5,
		CollisionCost:         1000,
	}
}

// Candidate is the node being scored: the state a trajectory reached and the
// setpoint that produced it.
type Candidate struct {
	State    dynamo.SimulationState
	Setpoint r3.Vector
}

// Evaluator computes the cost of the edge that ends in a candidate. It must be
// pure and deterministic.
type Evaluator interface {
	EdgeCost(c Candidate, goal r3.Vector, params Parameters, obstacles obstacle.Index) float64
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(c Candidate, goal r3.Vector, params Parameters, obstacles obstacle.Index) float64

func (f EvaluatorFunc) EdgeCost(c Candidate, goal r3.Vector, params Parameters, obstacles obstacle.Index) float64 {
	return f(c, goal, params, obstacles)
}

// Zero scores every edge as free.
var Zero = EvaluatorFunc(func(Candidate, r3.Vector, Parameters, obstacle.Index) float64 { return 0 })

// Simple penalizes obstacle proximity, heading away from the goal, harsh
// acceleration and vertical motion, on top of a constant per-edge cost.
type Simple struct{}

func (Simple) EdgeCost(c Candidate, goal r3.Vector, params Parameters, obstacles obstacle.Index) float64 {
	b := Breakdown(c, goal, params, obstacles)
	return b.Total()
}

// Terms is an edge cost split by contribution.
type Terms struct {
	Step, Goal, Heading, Smooth, HeightChange, Obstacle float64
}

func (t Terms) Total() float64 {
	return t.Step + t.Goal + t.Heading + t.Smooth + t.HeightChange + t.Obstacle
}

// Breakdown computes the individual terms Simple sums.
func Breakdown(c Candidate, goal r3.Vector, params Parameters, obstacles obstacle.Index) Terms {
	pos := c.State.Position
	vel := c.State.Velocity
	toGoal := goal.Sub(pos)

	t := Terms{
		Step:         params.StepCostParam,
		Goal:         params.GoalCostParam * toGoal.Norm(),
		Smooth:       params.SmoothCostParam * c.State.Acceleration.Norm(),
		HeightChange: params.HeightChangeCostParam * math.Abs(vel.Z),
	}

	heading := vel
	if heading.Norm2() == 0 {
		heading = c.Setpoint
	}
	t.Heading = params.HeadingCostParam * geom.AngleBetween(heading, toGoal)

	if obstacles != nil {
		if _, d, ok := obstacles.Nearest(pos); ok {
			if d < params.CollisionRadius {
				t.Obstacle = params.CollisionCost
			} else {
				t.Obstacle = params.ObstacleCostParam / (1 + d*d)
			}
		}
	}
	return t
}
