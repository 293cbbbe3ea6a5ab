package planner_test

import (
	"iter"
	"math"
	"time"

	"github.com/golang/geo/r3"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lookahead/internal/cost"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/planner"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

func generousLimits() dynamo.Limits {
	return dynamo.Limits{
		MaxXYVelocityNorm:   3,
		MaxZVelocity:        1,
		MinZVelocity:        -1,
		MaxAccelerationNorm: 5,
		MaxJerkNorm:         20,
	}
}

// kinematicGen moves straight along the direction at a fixed speed.
type kinematicGen struct {
	start dynamo.SimulationState
	speed float64
}

func (k kinematicGen) Generate(dir r3.Vector, duration float64) iter.Seq[dynamo.SimulationState] {
	return func(yield func(dynamo.SimulationState) bool) {
		end := k.start
		end.Position = k.start.Position.Add(dir.Mul(k.speed * duration))
		end.Time += duration
		yield(end)
	}
}

func kinematic(speed float64) planner.SimulateFunc {
	return func(_ dynamo.Limits, start dynamo.SimulationState, _ float64) planner.Generator {
		return kinematicGen{start: start, speed: speed}
	}
}

// pinnedGen sends every direction to the same position.
type pinnedGen struct {
	start dynamo.SimulationState
	to    r3.Vector
}

func (p pinnedGen) Generate(r3.Vector, float64) iter.Seq[dynamo.SimulationState] {
	return func(yield func(dynamo.SimulationState) bool) {
		end := p.start
		end.Position = p.to
		yield(end)
	}
}

func pinned(to r3.Vector) planner.SimulateFunc {
	return func(_ dynamo.Limits, start dynamo.SimulationState, _ float64) planner.Generator {
		return pinnedGen{start: start, to: to}
	}
}

func newPlanner(cfg planner.Config, goal r3.Vector, acceptance float64, opts ...planner.Option) *planner.Planner {
	opts = append([]planner.Option{planner.WithClock(fixedClock)}, opts...)
	p := planner.New(cfg, opts...)
	p.SetParams(cost.DefaultParameters(), generousLimits(), acceptance)
	p.SetPose(r3.Vector{}, r3.Vector{}, geom.Identity)
	p.SetGoal(goal)
	p.SetObstacles(obstacle.Empty())
	return p
}

// expectTreeInvariants checks the arena and score invariants of a finished
// tree against the evaluator that built it.
func expectTreeInvariants(tree *planner.Tree, in planner.Inputs, weight float64, eval cost.Evaluator) {
	for i, n := range tree.Nodes {
		Expect(n.Index).To(Equal(i))
		wantH := in.Goal.Sub(n.Position()).Norm() * weight
		Expect(n.H).To(BeNumerically("~", wantH, 1e-9))
		if i == 0 {
			Expect(n.F).To(BeNumerically("~", n.H, 1e-12))
			continue
		}
		Expect(n.Parent).To(BeNumerically("<", n.Index))

		parent := tree.Nodes[n.Parent]
		edge := eval.EdgeCost(cost.Candidate{State: n.State, Setpoint: n.Setpoint}, in.Goal, in.CostParams, in.Obstacles)
		Expect(n.F).To(BeNumerically("~", (parent.F-parent.H)+edge+n.H, 1e-9))
	}

	last := len(tree.Nodes)
	if _, ok := tree.TerminalNode(); ok {
		last--
	}
	closest := math.Inf(1)
	for i := 0; i < last; i++ {
		for j := i + 1; j < last; j++ {
			closest = math.Min(closest, tree.Nodes[i].Position().Sub(tree.Nodes[j].Position()).Norm())
		}
	}
	Expect(closest).To(BeNumerically(">=", planner.DedupRadius))
}
