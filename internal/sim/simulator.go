package sim

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/geom"
	"github.com/san-kum/lookahead/internal/logging"
	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/speedlimit"
	"github.com/san-kum/lookahead/internal/trajectory"
)

// headingSpeed is the horizontal speed above which the vehicle yaw follows
// its velocity.
const headingSpeed = 0.2

// Simulator flies a mission in closed loop: every control period it replans
// from the current pose and follows the first command of the new tree.
type Simulator struct {
	planner   *planner.Planner
	mission   Mission
	newTraj   func(dynamo.Limits, dynamo.SimulationState, float64) *trajectory.Simulator
	metrics   []Metric
	observers []Observer
	logger    *zap.SugaredLogger
}

// New wraps a configured planner. The planner's goal is replaced by the
// mission goal.
func New(p *planner.Planner, mission Mission, logger *zap.SugaredLogger) (*Simulator, error) {
	factory, err := trajectory.Factory(mission.Integrator)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if mission.Orientation == (quat.Number{}) {
		mission.Orientation = geom.Identity
	}
	p.SetGoal(mission.Goal)
	return &Simulator{
		planner: p,
		mission: mission,
		newTraj: factory,
		logger:  logger,
	}, nil
}

// FromConfig builds the planner, obstacle index and mission described by cfg.
func FromConfig(cfg *config.Config, logger *zap.SugaredLogger) (*Simulator, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	idx, err := cfg.ObstacleIndex()
	if err != nil {
		return nil, err
	}
	p := planner.New(cfg.Planner, planner.WithLogger(logger.Named("planner")))
	p.SetParams(cfg.Cost, cfg.Limits, cfg.Mission.AcceptanceRadius)
	p.SetObstacles(idx)
	p.SetPose(cfg.Mission.Start.R3(), cfg.Mission.Velocity.R3(), cfg.Orientation())
	return New(p, MissionFromConfig(cfg), logger)
}

func MissionFromConfig(cfg *config.Config) Mission {
	m := cfg.Mission
	return Mission{
		Start: dynamo.SimulationState{
			Position: m.Start.R3(),
			Velocity: m.Velocity.R3(),
		},
		Orientation:      cfg.Orientation(),
		Goal:             m.Goal.R3(),
		AcceptanceRadius: m.AcceptanceRadius,
		ControlDt:        m.ControlDt,
		Duration:         m.Duration,
		SimStep:          m.SimStep,
		Integrator:       m.Integrator,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Planner() *planner.Planner { return s.planner }

func (s *Simulator) Mission() Mission { return s.mission }

func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	sess, err := s.Begin()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Start:   s.mission.Start,
		Steps:   make([]Step, 0, int(s.mission.Duration/s.mission.ControlDt)+1),
		Metrics: make(map[string]float64),
	}

	var runErr error
	for {
		select {
		case <-ctx.Done():
			sess.cancel()
			runErr = errors.Wrap(ctx.Err(), "mission interrupted")
		default:
		}
		if runErr != nil {
			break
		}

		step, tree, ok := sess.Next()
		if !ok {
			runErr = sess.Err()
			break
		}
		result.Steps = append(result.Steps, step)
		result.LastTree = tree
		if step.Degenerate {
			result.Errors = append(result.Errors, &dynamo.StepError{
				Step:    step.Index,
				Time:    step.Time,
				State:   step.State,
				Wrapped: errors.Errorf("no motion planned (%s)", step.Termination),
			})
		}
	}

	result.Outcome = sess.Outcome()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	final := result.Final()
	s.logger.Infow("mission finished",
		"outcome", result.Outcome,
		"steps", len(result.Steps),
		"time", final.Time,
		"distance_to_goal", final.Position.Sub(s.mission.Goal).Norm(),
	)
	return result, runErr
}

// RunWithCallback flies the mission until it ends or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(Step, *planner.Tree) bool) (Outcome, error) {
	sess, err := s.Begin()
	if err != nil {
		return OutcomeNone, err
	}
	for {
		select {
		case <-ctx.Done():
			sess.cancel()
			return sess.Outcome(), errors.Wrap(ctx.Err(), "mission interrupted")
		default:
		}
		step, tree, ok := sess.Next()
		if !ok {
			return sess.Outcome(), sess.Err()
		}
		if !callback(step, tree) {
			return sess.Outcome(), nil
		}
	}
}

// Begin validates the mission, resets metrics and returns a session
// positioned at the mission start.
func (s *Simulator) Begin() (*Session, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Session{
		sim:         s,
		state:       s.mission.Start,
		orientation: s.mission.Orientation,
	}, nil
}

func (s *Simulator) validate() error {
	m := s.mission
	if m.ControlDt <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "control_dt must be positive, got %g", m.ControlDt)
	}
	if m.Duration <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "duration must be positive, got %g", m.Duration)
	}
	if m.AcceptanceRadius <= 0 {
		return errors.Wrapf(dynamo.ErrParameterBounds, "acceptance radius must be positive, got %g", m.AcceptanceRadius)
	}
	if !m.Start.IsValid() {
		return errors.Wrap(dynamo.ErrInvalidState, "mission start")
	}
	return nil
}

// localLimits applies the same braking bound the planner uses to the
// executed motion.
func (s *Simulator) localLimits(pos r3.Vector) dynamo.Limits {
	lims := s.planner.Inputs().Limits
	lims.MaxXYVelocityNorm = speedlimit.Clamp(
		lims.MaxJerkNorm, lims.MaxAccelerationNorm, lims.MaxXYVelocityNorm,
		geom.HorizontalNorm(pos.Sub(s.mission.Goal)),
		s.planner.Config().MaxSensorRange,
	)
	return lims
}

// Session is one flight in progress. It is not safe for concurrent use.
type Session struct {
	sim         *Simulator
	state       dynamo.SimulationState
	orientation quat.Number
	index       int
	outcome     Outcome
	err         error
}

func (ss *Session) State() dynamo.SimulationState { return ss.state }

func (ss *Session) Outcome() Outcome { return ss.outcome }

func (ss *Session) Err() error { return ss.err }

func (ss *Session) Done() bool { return ss.outcome != OutcomeNone }

func (ss *Session) cancel() {
	if ss.outcome == OutcomeNone {
		ss.outcome = OutcomeCanceled
	}
}

// Next runs one control cycle. It returns false once the mission has ended;
// Outcome and Err then tell how.
func (ss *Session) Next() (Step, *planner.Tree, bool) {
	if ss.Done() {
		return Step{}, nil, false
	}
	s := ss.sim
	m := s.mission
	pos := ss.state.Position

	if pos.Sub(m.Goal).Norm() < m.AcceptanceRadius {
		ss.outcome = OutcomeReached
		return Step{}, nil, false
	}
	now := m.Start.Time + float64(ss.index)*m.ControlDt
	if now-m.Start.Time >= m.Duration-1e-9 {
		ss.outcome = OutcomeTimeout
		return Step{}, nil, false
	}

	s.planner.SetPose(pos, ss.state.Velocity, ss.orientation)
	tree := s.planner.BuildTree()

	var cmd r3.Vector
	if tree.HasNext {
		cmd = tree.NextCommand
	}

	traj := s.newTraj(s.localLimits(pos), ss.state, m.SimStep)
	next := trajectory.Last(traj.Generate(cmd, m.ControlDt), ss.state)
	next.Time = now + m.ControlDt

	if !next.IsValid() {
		ss.outcome = OutcomeFailed
		ss.err = &dynamo.StepError{Step: ss.index, Time: now, State: ss.state, Wrapped: dynamo.ErrInvalidState}
		return Step{}, tree, false
	}
	ss.state = next

	if h := geom.Horizontal(next.Velocity); h.Norm() > headingSpeed {
		ss.orientation = geom.FromYaw(math.Atan2(h.Y, h.X))
	}

	step := Step{
		Index:          ss.index,
		Time:           now,
		Command:        cmd,
		State:          next,
		Degenerate:     tree.Degenerate(),
		Termination:    tree.Termination,
		TreeSize:       len(tree.Nodes),
		Expansions:     tree.Expansions,
		DistanceToGoal: next.Position.Sub(m.Goal).Norm(),
	}
	ss.index++

	for _, metric := range s.metrics {
		metric.Observe(step, tree)
	}
	for _, obs := range s.observers {
		obs.OnStep(step, tree)
	}
	s.logger.Debugw("control cycle",
		"step", step.Index,
		"termination", step.Termination,
		"nodes", step.TreeSize,
		"distance", step.DistanceToGoal,
	)
	return step, tree, true
}
