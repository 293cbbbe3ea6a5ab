package cost

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/obstacle"
)

func candidateAt(p, v r3.Vector) Candidate {
	return Candidate{State: dynamo.SimulationState{Position: p, Velocity: v}, Setpoint: v}
}

func TestZeroEvaluator(t *testing.T) {
	g := NewWithT(t)
	c := candidateAt(r3.Vector{X: 1}, r3.Vector{X: 1})
	g.Expect(Zero.EdgeCost(c, r3.Vector{X: 10}, DefaultParameters(), obstacle.Empty())).To(BeZero())
}

func TestSimpleStepCostOnly(t *testing.T) {
	g := NewWithT(t)

	params := Parameters{StepCostParam: 2}
	c := candidateAt(r3.Vector{X: 1}, r3.Vector{Y: 1, Z: 3})
	g.Expect(Simple{}.EdgeCost(c, r3.Vector{X: 10}, params, nil)).To(Equal(2.0))
}

func TestSimpleIsDeterministic(t *testing.T) {
	g := NewWithT(t)

	idx := obstacle.NewKDTree(obstacle.Wall(r3.Vector{X: 5, Y: -3}, r3.Vector{X: 5, Y: 3}, 3, 0.25))
	c := candidateAt(r3.Vector{X: 3, Y: 0.5, Z: 1}, r3.Vector{X: 1, Y: 0.2})
	a := Simple{}.EdgeCost(c, r3.Vector{X: 10}, DefaultParameters(), idx)
	b := Simple{}.EdgeCost(c, r3.Vector{X: 10}, DefaultParameters(), idx)
	g.Expect(a).To(Equal(b))
	g.Expect(a).To(BeNumerically(">", 0))
}

func TestObstacleProximityIncreasesCost(t *testing.T) {
	g := NewWithT(t)

	idx := obstacle.NewKDTree([]r3.Vector{{X: 5}})
	params := DefaultParameters()
	goal := r3.Vector{X: 10}

	far := Breakdown(candidateAt(r3.Vector{X: 0, Y: 4}, r3.Vector{}), goal, params, idx)
	near := Breakdown(candidateAt(r3.Vector{X: 4, Y: 0.8}, r3.Vector{}), goal, params, idx)
	inside := Breakdown(candidateAt(r3.Vector{X: 4.9}, r3.Vector{}), goal, params, idx)

	g.Expect(near.Obstacle).To(BeNumerically(">", far.Obstacle))
	g.Expect(inside.Obstacle).To(Equal(params.CollisionCost))
}

func TestTypedNilIndexCostsNothing(t *testing.T) {
	g := NewWithT(t)

	var idx *obstacle.KDTree
	c := candidateAt(r3.Vector{X: 1}, r3.Vector{X: 1})
	var terms Terms
	g.Expect(func() { terms = Breakdown(c, r3.Vector{X: 10}, DefaultParameters(), idx) }).NotTo(Panic())
	g.Expect(terms.Obstacle).To(BeZero())
}

func TestHeadingTerm(t *testing.T) {
	g := NewWithT(t)

	params := Parameters{HeadingCostParam: 1}
	goal := r3.Vector{X: 10}

	toward := Breakdown(candidateAt(r3.Vector{}, r3.Vector{X: 1}), goal, params, nil)
	away := Breakdown(candidateAt(r3.Vector{}, r3.Vector{X: -1}), goal, params, nil)

	g.Expect(toward.Heading).To(BeNumerically("~", 0, 1e-12))
	g.Expect(away.Heading).To(BeNumerically("~", math.Pi, 1e-12))
}

func TestTermsTotal(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Terms{1, 2, 3, 4, 5, 6}.Total()).To(Equal(21.0))
}

func TestEvaluatorFunc(t *testing.T) {
	g := NewWithT(t)

	var seen r3.Vector
	f := EvaluatorFunc(func(c Candidate, goal r3.Vector, _ Parameters, _ obstacle.Index) float64 {
		seen = goal
		return c.State.Position.X
	})
	g.Expect(f.EdgeCost(candidateAt(r3.Vector{X: 7}, r3.Vector{}), r3.Vector{Y: 1}, Parameters{}, nil)).To(Equal(7.0))
	g.Expect(seen).To(Equal(r3.Vector{Y: 1}))
}
