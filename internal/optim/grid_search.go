// Package optim tunes planner parameters by flying a scenario over a grid of
// settings.
package optim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/sim"
)

// Tunable parameter names.
const (
	HeuristicWeight  = "tree_heuristic_weight"
	NodeDuration     = "tree_node_duration"
	SensorRange      = "max_sensor_range"
	MaxExpansions    = "max_expansions"
	TimeBudgetMillis = "time_budget_ms"
	AcceptanceRadius = "acceptance_radius"
)

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, value float64) error {
	switch name {
	case HeuristicWeight:
		cfg.Planner.TreeHeuristicWeight = value
	case NodeDuration:
		cfg.Planner.TreeNodeDuration = value
	case SensorRange:
		cfg.Planner.MaxSensorRange = value
	case MaxExpansions:
		cfg.Planner.MaxExpansions = int(value)
	case TimeBudgetMillis:
		cfg.Planner.TimeBudget = time.Duration(value * float64(time.Millisecond))
	case AcceptanceRadius:
		cfg.Mission.AcceptanceRadius = value
	default:
		return errors.Errorf("unknown parameter %q", name)
	}
	return nil
}

// Objective scores a flight; lower is better.
type Objective func(*sim.Result) float64

// FlightTime counts control cycles to the goal. Missions that do not reach
// it score +Inf.
func FlightTime(r *sim.Result) float64 {
	if r.Outcome != sim.OutcomeReached {
		return math.Inf(1)
	}
	return float64(len(r.Steps))
}

// Metric scores reached missions by a recorded metric.
func Metric(name string) Objective {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok || r.Outcome != sim.OutcomeReached {
			return math.Inf(1)
		}
		return v
	}
}

type Param struct {
	Name   string
	Values []float64
}

type Trial struct {
	Params map[string]float64
	Result *sim.Result
	Score  float64
}

type GridSearch struct {
	params []Param
}

func NewGridSearch(params ...Param) (*GridSearch, error) {
	probe := config.DefaultConfig()
	for _, p := range params {
		if err := Apply(probe, p.Name, 0); err != nil {
			return nil, err
		}
		if len(p.Values) == 0 {
			return nil, errors.Errorf("parameter %q has no values", p.Name)
		}
	}
	return &GridSearch{params: params}, nil
}

// Points enumerates the grid, the last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, current)
		return
	}

	p := g.params[depth]
	for _, val := range p.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[p.Name] = val

		g.searchRecursive(depth+1, next, out)
	}
}

// Search flies base once per grid point, concurrently, and returns the best
// trial along with all of them in grid order. Ties keep the earlier point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective, opts sim.BatchOptions) (Trial, []Trial, error) {
	if objective == nil {
		objective = FlightTime
	}

	points := g.Points()
	scenarios := make([]sim.Scenario, len(points))
	for i, pt := range points {
		cfg := base.Clone()
		for _, p := range g.params {
			if err := Apply(cfg, p.Name, pt[p.Name]); err != nil {
				return Trial{}, nil, err
			}
		}
		if err := cfg.Validate(); err != nil {
			return Trial{}, nil, errors.Wrapf(err, "grid point %v", pt)
		}
		scenarios[i] = sim.Scenario{Name: fmt.Sprintf("trial-%d", i), Config: cfg}
	}

	results, err := sim.Batch(ctx, scenarios, opts)
	if err != nil {
		return Trial{}, nil, err
	}

	trials := make([]Trial, len(results))
	best := -1
	for i, r := range results {
		trials[i] = Trial{Params: points[i], Result: r.Result, Score: objective(r.Result)}
		if best < 0 || trials[i].Score < trials[best].Score {
			best = i
		}
	}
	if best < 0 {
		return Trial{}, trials, errors.New("empty grid")
	}
	return trials[best], trials, nil
}
