package sim

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/planner"
)

// Step is one control cycle: the command chosen at Time and the state the
// vehicle reached after following it for one control period.
type Step struct {
	Index          int
	Time           float64
	Command        r3.Vector
	State          dynamo.SimulationState
	Degenerate     bool
	Termination    planner.Termination
	TreeSize       int
	Expansions     int
	DistanceToGoal float64
}

type Metric interface {
	Name() string
	Observe(step Step, tree *planner.Tree)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step Step, tree *planner.Tree)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step Step, tree *planner.Tree)

func (f ObserverFunc) OnStep(step Step, tree *planner.Tree) { f(step, tree) }

// Mission is what the closed loop flies.
type Mission struct {
	Start            dynamo.SimulationState
	Orientation      quat.Number
	Goal             r3.Vector
	AcceptanceRadius float64
	ControlDt        float64
	Duration         float64
	SimStep          float64
	Integrator       string
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeReached
	OutcomeTimeout
	OutcomeCanceled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReached:
		return "reached"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

type Result struct {
	Start    dynamo.SimulationState
	Steps    []Step
	Outcome  Outcome
	Metrics  map[string]float64
	LastTree *planner.Tree
	// Errors collects per-step failures that did not abort the run.
	Errors []error
}

// Trajectory returns the start state followed by the state after every step.
func (r *Result) Trajectory() []dynamo.SimulationState {
	out := make([]dynamo.SimulationState, 0, len(r.Steps)+1)
	out = append(out, r.Start)
	for _, s := range r.Steps {
		out = append(out, s.State)
	}
	return out
}

func (r *Result) Final() dynamo.SimulationState {
	if len(r.Steps) == 0 {
		return r.Start
	}
	return r.Steps[len(r.Steps)-1].State
}
