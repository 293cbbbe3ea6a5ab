package planner

import (
	"iter"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/lookahead/internal/cost"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/logging"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/speedlimit"
	"github.com/san-kum/lookahead/internal/trajectory"
)

const (
	// DedupRadius is the minimum spacing between node positions.
	DedupRadius = 0.2

	// SimulationStep is the integration step of every edge trajectory.
	SimulationStep = trajectory.DefaultStep
)

// Generator yields the states of a trajectory steered toward a direction.
type Generator interface {
	Generate(direction r3.Vector, duration float64) iter.Seq[dynamo.SimulationState]
}

// SimulateFunc seeds a Generator at start.
type SimulateFunc func(limits dynamo.Limits, start dynamo.SimulationState, step float64) Generator

// DefaultSimulate uses the jerk-limited point-mass simulator with RK4.
func DefaultSimulate(limits dynamo.Limits, start dynamo.SimulationState, step float64) Generator {
	return trajectory.New(limits, start, step)
}

// Inputs is the snapshot a planning call runs against.
type Inputs struct {
	Position         r3.Vector
	Velocity         r3.Vector
	Orientation      quat.Number
	Goal             r3.Vector
	CostParams       cost.Parameters
	Limits           dynamo.Limits
	AcceptanceRadius float64
	Obstacles        obstacle.Index
	// ClosestPointOnLine is accepted for interface parity and not used by
	// the search.
	ClosestPointOnLine r3.Vector
}

// Planner builds look-ahead trees. It holds only configuration and the latest
// input snapshot; every BuildTree call works on fresh state. Setters and
// BuildTree may be called from different goroutines, but inputs must not be
// changed while a call is expected to see a particular snapshot.
type Planner struct {
	mu  sync.Mutex
	cfg Config
	in  Inputs

	simulate  SimulateFunc
	evaluator cost.Evaluator
	now       func() time.Time
	logger    *zap.SugaredLogger
}

type Option func(*Planner)

func WithSimulator(fn SimulateFunc) Option {
	return func(p *Planner) { p.simulate = fn }
}

func WithEvaluator(e cost.Evaluator) Option {
	return func(p *Planner) { p.evaluator = e }
}

func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Planner) { p.logger = l }
}

func New(cfg Config, opts ...Option) *Planner {
	p := &Planner{
		cfg: cfg,
		in: Inputs{
			Orientation: geom.Identity,
			Limits:      dynamo.DefaultLimits(),
			CostParams:  cost.DefaultParameters(),
			Obstacles:   obstacle.Empty(),
		},
		simulate:  DefaultSimulate,
		evaluator: cost.Simple{},
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ApplyConfig replaces all tunables at once. It takes effect on the next call.
func (p *Planner) ApplyConfig(cfg Config) {
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}

func (p *Planner) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Planner) SetParams(params cost.Parameters, limits dynamo.Limits, acceptanceRadius float64) {
	p.mu.Lock()
	p.in.CostParams = params
	p.in.Limits = limits
	p.in.AcceptanceRadius = acceptanceRadius
	p.mu.Unlock()
}

func (p *Planner) SetPose(pos, vel r3.Vector, q quat.Number) {
	p.mu.Lock()
	p.in.Position = pos
	p.in.Velocity = vel
	p.in.Orientation = q
	p.mu.Unlock()
}

func (p *Planner) SetGoal(goal r3.Vector) {
	p.mu.Lock()
	p.in.Goal = goal
	p.mu.Unlock()
}

func (p *Planner) SetObstacles(idx obstacle.Index) {
	p.mu.Lock()
	p.in.Obstacles = idx
	p.mu.Unlock()
}

func (p *Planner) SetClosestPointOnLine(pt r3.Vector) {
	p.mu.Lock()
	p.in.ClosestPointOnLine = pt
	p.mu.Unlock()
}

// SetInputs replaces the whole input snapshot.
func (p *Planner) SetInputs(in Inputs) {
	p.mu.Lock()
	p.in = in
	p.mu.Unlock()
}

func (p *Planner) Inputs() Inputs {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.in
}

// BuildTree runs one best-first expansion from the current pose and returns
// the resulting tree. It never fails; see Tree.Termination for how it ended.
func (p *Planner) BuildTree() *Tree {
	p.mu.Lock()
	s := &search{
		cfg:       p.cfg,
		in:        p.in,
		simulate:  p.simulate,
		evaluator: p.evaluator,
		now:       p.now,
	}
	p.mu.Unlock()

	tree := s.run()
	p.logger.Debugw("look-ahead tree built",
		"termination", tree.Termination,
		"nodes", len(tree.Nodes),
		"expansions", tree.Expansions,
		"path", len(tree.Path),
	)
	return tree
}

// search is the working state of one BuildTree call.
type search struct {
	cfg       Config
	in        Inputs
	simulate  SimulateFunc
	evaluator cost.Evaluator
	now       func() time.Time

	directions []r3.Vector
	tree       *Tree
}

func (s *search) heuristic(p r3.Vector) float64 {
	return s.in.Goal.Sub(p).Norm() * s.cfg.TreeHeuristicWeight
}

func (s *search) run() *Tree {
	started := s.now()
	s.directions = RotatedDirections(s.in.Orientation)
	s.tree = &Tree{Goal: s.in.Goal}
	t := s.tree

	root := TreeNode{
		State: dynamo.SimulationState{
			Position: s.in.Position,
			Velocity: s.in.Velocity,
			Time:     float64(started.UnixNano()) / 1e9,
		},
	}
	root.H = s.heuristic(root.Position())
	root.F = root.H
	t.Nodes = append(t.Nodes, root)

	origin := 0
	for {
		limits := s.localLimits(t.Nodes[origin].Position())

		if reason, done := s.terminal(origin); done {
			s.appendGoalNode(origin)
			t.Termination = reason
			break
		}

		if s.exhausted(started) {
			t.Termination = TerminationExhausted
			break
		}

		s.expand(origin, limits)
		t.Nodes[origin].Closed = true
		t.ClosedSet = append(t.ClosedSet, origin)
		t.Expansions++

		origin = s.selectOrigin(origin)

		if len(t.Nodes) <= 1 {
			t.Termination = TerminationStuck
			break
		}
	}

	t.Origin = origin
	s.extractPath()
	return t
}

// localLimits caps horizontal speed so the vehicle can brake within both the
// remaining distance to the goal and the sensor range.
func (s *search) localLimits(pos r3.Vector) dynamo.Limits {
	lims := s.in.Limits
	lims.MaxXYVelocityNorm = speedlimit.Clamp(
		lims.MaxJerkNorm, lims.MaxAccelerationNorm, lims.MaxXYVelocityNorm,
		geom.HorizontalNorm(pos.Sub(s.in.Goal)),
		s.cfg.MaxSensorRange,
	)
	return lims
}

func (s *search) terminal(origin int) (Termination, bool) {
	pos := s.tree.Nodes[origin].Position()
	// the index guard only applies to the acceptance check
	if origin > 1 && pos.Sub(s.in.Goal).Norm() < s.in.AcceptanceRadius {
		return TerminationGoal, true
	}
	if pos.Sub(s.in.Position).Norm() >= 2*s.cfg.MaxSensorRange {
		return TerminationHorizon, true
	}
	return TerminationNone, false
}

func (s *search) exhausted(started time.Time) bool {
	if s.tree.Expansions >= ExpansionCeiling {
		return true
	}
	if s.cfg.MaxExpansions > 0 && s.tree.Expansions >= s.cfg.MaxExpansions {
		return true
	}
	return s.cfg.TimeBudget > 0 && s.now().Sub(started) >= s.cfg.TimeBudget
}

func (s *search) appendGoalNode(origin int) {
	t := s.tree
	parent := t.Nodes[origin]
	n := TreeNode{
		Index:    len(t.Nodes),
		Parent:   origin,
		State:    dynamo.StateAt(0, s.in.Goal),
		Setpoint: s.in.Goal.Sub(parent.Position()),
		Closed:   true,
	}
	s.score(&n, parent)
	t.Nodes[origin].Closed = true
	t.Nodes = append(t.Nodes, n)
	t.ClosedSet = append(t.ClosedSet, origin, n.Index)
}

func (s *search) expand(origin int, limits dynamo.Limits) {
	t := s.tree
	for _, dir := range s.directions {
		start := t.Nodes[origin].State
		gen := s.simulate(limits, start, SimulationStep)
		end := trajectory.Last(gen.Generate(dir, s.cfg.TreeNodeDuration), start)

		if s.isDuplicate(end.Position) {
			continue
		}

		n := TreeNode{
			Index:    len(t.Nodes),
			Parent:   origin,
			State:    end,
			Setpoint: dir,
		}
		s.score(&n, t.Nodes[origin])
		t.Nodes = append(t.Nodes, n)
	}
}

func (s *search) score(n *TreeNode, parent TreeNode) {
	n.H = s.heuristic(n.Position())
	edge := s.evaluator.EdgeCost(
		cost.Candidate{State: n.State, Setpoint: n.Setpoint},
		s.in.Goal, s.in.CostParams, s.in.Obstacles,
	)
	n.F = parent.G() + edge + n.H
}

func (s *search) isDuplicate(p r3.Vector) bool {
	for _, n := range s.tree.Nodes {
		if n.Position().Sub(p).Norm() < DedupRadius {
			return true
		}
	}
	return false
}

// selectOrigin picks the open node with the smallest F, keeping the earliest
// on ties. With no open node the current origin is kept.
func (s *search) selectOrigin(current int) int {
	best := current
	minimal := math.MaxFloat64
	for i, n := range s.tree.Nodes {
		if !n.Closed && n.F < minimal {
			minimal = n.F
			best = i
		}
	}
	return best
}

func (s *search) extractPath() {
	t := s.tree
	t.Path = t.Path[:0]
	for end := t.Origin; end > 0; end = t.Nodes[end].Parent {
		t.Path = append(t.Path, t.Nodes[end].Setpoint)
	}
	t.Path = append(t.Path, t.Nodes[0].Setpoint)
	if len(t.Path) >= 2 {
		t.NextCommand = t.Path[len(t.Path)-2]
		t.HasNext = true
	}
}
