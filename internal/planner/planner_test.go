package planner_test

import (
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lookahead/internal/cost"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/planner"
)

var _ = Describe("BuildTree", func() {
	var cfg planner.Config

	BeforeEach(func() {
		cfg = planner.DefaultConfig()
	})

	Context("in open space with the jerk-limited simulator", func() {
		It("reaches a goal ten meters ahead", func() {
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5, planner.WithEvaluator(cost.Zero))
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationGoal))
			Expect(tree.Expansions).To(BeNumerically("<", 50))
			Expect(tree.HasNext).To(BeTrue())
			Expect(tree.NextCommand.X).To(BeNumerically(">", 0))

			terminal, ok := tree.TerminalNode()
			Expect(ok).To(BeTrue())
			Expect(terminal.Position()).To(Equal(r3.Vector{X: 10}))
			Expect(terminal.State.Time).To(BeZero())
			Expect(terminal.Parent).To(Equal(tree.Origin))
			Expect(terminal.Setpoint).To(Equal(r3.Vector{X: 10}.Sub(tree.Nodes[tree.Origin].Position())))
			Expect(tree.Nodes[tree.Origin].Position().Sub(r3.Vector{X: 10}).Norm()).To(BeNumerically("<", 0.5))

			expectTreeInvariants(tree, p.Inputs(), cfg.TreeHeuristicWeight, cost.Zero)
		})

		It("keeps its invariants when scoring against obstacles", func() {
			p := newPlanner(cfg, r3.Vector{X: 8, Y: 2}, 0.5)
			p.SetObstacles(obstacle.NewKDTree(obstacle.Pillar(r3.Vector{X: 4}, 0.5, 2, 0.25)))
			tree := p.BuildTree()

			Expect(tree.Termination).NotTo(Equal(planner.TerminationNone))
			expectTreeInvariants(tree, p.Inputs(), cfg.TreeHeuristicWeight, cost.Simple{})
		})

		It("stamps the root with the wall clock and the current pose", func() {
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5)
			p.SetPose(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 0.5}, geom.Identity)
			tree := p.BuildTree()

			root := tree.Nodes[0]
			Expect(root.IsRoot()).To(BeTrue())
			Expect(root.Parent).To(Equal(0))
			Expect(root.Position()).To(Equal(r3.Vector{X: 1, Y: 2, Z: 3}))
			Expect(root.Velocity()).To(Equal(r3.Vector{X: 0.5}))
			Expect(root.Setpoint).To(Equal(r3.Vector{}))
			Expect(root.State.Time).To(BeNumerically("~", float64(epoch.UnixNano())/1e9, 1e-6))
			Expect(tree.ClosedSet[0]).To(Equal(0))
		})
	})

	Context("with a goal already within the acceptance radius", func() {
		It("still expands the root and terminates past its first child", func() {
			cfg.TreeNodeDuration = 1
			p := newPlanner(cfg, r3.Vector{X: 0.3}, 0.5,
				planner.WithSimulator(kinematic(1)),
				planner.WithEvaluator(cost.Zero),
			)
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationGoal))
			Expect(tree.Expansions).To(Equal(3))
			Expect(tree.Nodes).To(HaveLen(29))
			Expect(tree.ClosedSet).To(Equal([]int{0, 1, 18, 23, 28}))
			Expect(tree.Origin).To(Equal(23))

			children := 0
			for _, n := range tree.Nodes[1:] {
				if n.Parent == 0 {
					children++
				}
			}
			Expect(children).To(Equal(len(planner.Directions())))

			terminal, ok := tree.TerminalNode()
			Expect(ok).To(BeTrue())
			Expect(terminal.Index).To(Equal(28))

			Expect(tree.Path).To(Equal([]r3.Vector{
				{Y: -1},
				{X: -0.707, Y: 0.707},
				{X: 1},
				{},
			}))
			Expect(tree.NextCommand).To(Equal(r3.Vector{X: 1}))
			Expect(tree.PathIndices()).To(HaveLen(4))
			Expect(tree.PathIndices()[3]).To(Equal(23))

			expectTreeInvariants(tree, p.Inputs(), cfg.TreeHeuristicWeight, cost.Zero)
		})
	})

	Context("when the planning horizon is reached", func() {
		It("stops once an origin is twice the sensor range away", func() {
			cfg.TreeNodeDuration = 1
			cfg.MaxSensorRange = 1.5
			cfg.MinSensorRange = 0
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5,
				planner.WithSimulator(kinematic(1)),
				planner.WithEvaluator(cost.Zero),
			)
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationHorizon))
			Expect(tree.Expansions).To(Equal(3))
			Expect(tree.Nodes[tree.Origin].Position().Norm()).To(BeNumerically(">=", 3))
			Expect(tree.Commands()).To(Equal([]r3.Vector{{X: 1}, {X: 1}, {X: 1}}))

			terminal, _ := tree.TerminalNode()
			Expect(terminal.Position()).To(Equal(r3.Vector{X: 10}))
		})

		It("applies to the root regardless of goal proximity", func() {
			cfg.MaxSensorRange = 0
			cfg.MinSensorRange = 0
			p := newPlanner(cfg, r3.Vector{X: 0.3}, 0.5, planner.WithSimulator(kinematic(1)))
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationHorizon))
			Expect(tree.Expansions).To(BeZero())
			Expect(tree.Nodes).To(HaveLen(2))
			Expect(tree.Origin).To(BeZero())
			Expect(tree.Degenerate()).To(BeTrue())
			Expect(tree.HasNext).To(BeFalse())
		})
	})

	Context("when no candidate can move", func() {
		It("reports a degenerate stuck tree", func() {
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5)
			p.SetParams(cost.DefaultParameters(), dynamo.Limits{}, 0.5)
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationStuck))
			Expect(tree.Nodes).To(HaveLen(1))
			Expect(tree.Path).To(Equal([]r3.Vector{{}}))
			Expect(tree.Degenerate()).To(BeTrue())
			Expect(tree.HasNext).To(BeFalse())
			Expect(tree.Commands()).To(BeEmpty())
		})
	})

	Context("when the search cannot progress", func() {
		It("stops at the expansion cap", func() {
			cfg.MaxExpansions = 20
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5, planner.WithSimulator(pinned(r3.Vector{X: 1})))
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationExhausted))
			Expect(tree.Expansions).To(Equal(20))
			Expect(tree.Nodes).To(HaveLen(2))
			Expect(tree.Origin).To(Equal(1))
			Expect(tree.NextCommand).To(Equal(r3.Vector{X: 1}))
			Expect(tree.Open()).To(BeEmpty())
		})

		It("stops when the time budget runs out", func() {
			cfg.MaxExpansions = 0
			cfg.TimeBudget = time.Second

			var mu sync.Mutex
			now := epoch
			clock := func() time.Time {
				mu.Lock()
				defer mu.Unlock()
				now = now.Add(300 * time.Millisecond)
				return now
			}
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5,
				planner.WithClock(clock),
				planner.WithSimulator(pinned(r3.Vector{X: 1})),
			)
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationExhausted))
			Expect(tree.Expansions).To(Equal(3))
		})

		It("stops at the ceiling when both limits are disabled", func() {
			cfg.MaxExpansions = 0
			cfg.TimeBudget = 0
			p := newPlanner(cfg, r3.Vector{X: 10}, 0.5, planner.WithSimulator(pinned(r3.Vector{X: 1})))
			tree := p.BuildTree()

			Expect(tree.Termination).To(Equal(planner.TerminationExhausted))
			Expect(tree.Expansions).To(Equal(planner.ExpansionCeiling))
			Expect(tree.Nodes).To(HaveLen(2))
		})
	})

	It("scales every h with the heuristic weight", func() {
		cfg.MaxExpansions = 1
		build := func(weight float64) *planner.Tree {
			c := cfg
			c.TreeHeuristicWeight = weight
			return newPlanner(c, r3.Vector{X: 10}, 0.5, planner.WithEvaluator(cost.Zero)).BuildTree()
		}
		light, heavy := build(1), build(2)

		Expect(light.Termination).To(Equal(planner.TerminationExhausted))
		Expect(heavy.Nodes).To(HaveLen(len(light.Nodes)))
		Expect(light.Nodes[0].H).To(BeNumerically("~", 10, 1e-12))
		for i := range light.Nodes {
			Expect(heavy.Nodes[i].H).To(BeNumerically("~", 2*light.Nodes[i].H, 1e-9))
			Expect(heavy.Nodes[i].F).To(BeNumerically(">=", light.Nodes[i].F))
		}
		expectTreeInvariants(light, newPlanner(cfg, r3.Vector{X: 10}, 0.5).Inputs(), 1, cost.Zero)
		expectTreeInvariants(heavy, newPlanner(cfg, r3.Vector{X: 10}, 0.5).Inputs(), 2, cost.Zero)
	})

	It("rotates candidates into the body frame", func() {
		cfg.MaxExpansions = 1
		p := newPlanner(cfg, r3.Vector{Y: 10}, 0.5,
			planner.WithSimulator(kinematic(1)),
			planner.WithEvaluator(cost.Zero),
		)
		p.SetPose(r3.Vector{}, r3.Vector{}, geom.FromYaw(math.Pi/2))
		tree := p.BuildTree()

		first := tree.Nodes[1].Setpoint
		Expect(first.X).To(BeNumerically("~", 0, 1e-9))
		Expect(first.Y).To(BeNumerically("~", 1, 1e-9))
		Expect(tree.NextCommand.Y).To(BeNumerically("~", 1, 1e-9))
	})

	It("starts from fresh state on every call", func() {
		p := newPlanner(cfg, r3.Vector{X: 10}, 0.5)
		first := p.BuildTree()
		first.Nodes[0].F = -1
		first.Path = nil

		second := p.BuildTree()
		Expect(second.Nodes[0].F).To(BeNumerically(">", 0))

		p.SetClosestPointOnLine(r3.Vector{X: -100, Y: 42})
		third := p.BuildTree()
		Expect(third.Nodes).To(Equal(second.Nodes))
		Expect(third.Path).To(Equal(second.Path))
	})

	It("plans against the configuration applied last", func() {
		p := newPlanner(cfg, r3.Vector{X: 10}, 0.5, planner.WithEvaluator(cost.Zero))
		next := cfg
		next.MaxExpansions = 2
		p.ApplyConfig(next)

		Expect(p.Config()).To(Equal(next))
		tree := p.BuildTree()
		Expect(tree.Termination).To(Equal(planner.TerminationExhausted))
		Expect(tree.Expansions).To(Equal(2))
	})
})

var _ = Describe("Config", func() {
	It("accepts the defaults", func() {
		Expect(planner.DefaultConfig().Validate()).To(Succeed())
	})

	It("reports every invalid tunable", func() {
		cfg := planner.DefaultConfig()
		cfg.TreeNodeDuration = 0
		cfg.MaxSensorRange = -1
		cfg.MaxExpansions = -3

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("tree_node_duration"))
		Expect(err.Error()).To(ContainSubstring("max_sensor_range"))
		Expect(err.Error()).To(ContainSubstring("max_expansions"))
	})

	It("rejects a search with no bound at all", func() {
		cfg := planner.DefaultConfig()
		cfg.MaxExpansions = 0
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("cannot both be disabled")))

		cfg.TimeBudget = 20 * time.Millisecond
		Expect(cfg.Validate()).To(Succeed())

		cfg.MaxExpansions = planner.ExpansionCeiling + 1
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_expansions")))
	})
})
