package planner

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	DefaultTreeNodeDuration    = 0.5
	DefaultTreeHeuristicWeight = 10.0
	DefaultMaxSensorRange      = 15.0
	DefaultMinSensorRange      = 0.2
	DefaultChildrenPerNode     = 1
	DefaultNExpandedNodes      = 5
	DefaultSmoothingMargin     = 40.0
	DefaultMaxExpansions       = 500

	// ExpansionCeiling bounds every call, whatever MaxExpansions and
	// TimeBudget say.
	ExpansionCeiling = 10000
)

// Config holds the search tunables. ChildrenPerNode, NExpandedNodes,
// SmoothingMarginDegrees and MinSensorRange are carried for configuration
// compatibility and do not influence the search.
type Config struct {
	// TreeNodeDuration is the length of each edge trajectory, in seconds.
	TreeNodeDuration       float64 `yaml:"tree_node_duration"`
	TreeHeuristicWeight    float64 `yaml:"tree_heuristic_weight"`
	MaxSensorRange         float64 `yaml:"max_sensor_range"`
	MinSensorRange         float64 `yaml:"min_sensor_range"`
	ChildrenPerNode        int     `yaml:"children_per_node"`
	NExpandedNodes         int     `yaml:"n_expanded_nodes"`
	SmoothingMarginDegrees float64 `yaml:"smoothing_margin_degrees"`
	// MaxExpansions bounds the number of expanded nodes; 0 disables the cap
	// and leaves TimeBudget and ExpansionCeiling.
	MaxExpansions int `yaml:"max_expansions"`
	// TimeBudget bounds wall-clock time per call; 0 disables it.
	TimeBudget time.Duration `yaml:"time_budget"`
}

func DefaultConfig() Config {
	return Config{
		TreeNodeDuration:       DefaultTreeNodeDuration,
		TreeHeuristicWeight:    DefaultTreeHeuristicWeight,
		MaxSensorRange:         DefaultMaxSensorRange,
		MinSensorRange:         DefaultMinSensorRange,
		ChildrenPerNode:        DefaultChildrenPerNode,
		NExpandedNodes:         DefaultNExpandedNodes,
		SmoothingMarginDegrees: DefaultSmoothingMargin,
		MaxExpansions:          DefaultMaxExpansions,
	}
}

// Validate reports every out-of-range tunable.
func (c Config) Validate() error {
	var err error
	if c.TreeNodeDuration <= 0 {
		err = multierr.Append(err, errors.Errorf("tree_node_duration must be positive, got %g", c.TreeNodeDuration))
	}
	if c.TreeHeuristicWeight < 0 {
		err = multierr.Append(err, errors.Errorf("tree_heuristic_weight must not be negative, got %g", c.TreeHeuristicWeight))
	}
	if c.MaxSensorRange <= 0 {
		err = multierr.Append(err, errors.Errorf("max_sensor_range must be positive, got %g", c.MaxSensorRange))
	}
	if c.MinSensorRange < 0 || c.MinSensorRange > c.MaxSensorRange {
		err = multierr.Append(err, errors.Errorf("min_sensor_range must be within [0, max_sensor_range], got %g", c.MinSensorRange))
	}
	if c.MaxExpansions < 0 || c.MaxExpansions > ExpansionCeiling {
		err = multierr.Append(err, errors.Errorf("max_expansions must be within [0, %d], got %d", ExpansionCeiling, c.MaxExpansions))
	}
	if c.MaxExpansions == 0 && c.TimeBudget == 0 {
		err = multierr.Append(err, errors.New("max_expansions and time_budget cannot both be disabled"))
	}
	if c.TimeBudget < 0 {
		err = multierr.Append(err, errors.Errorf("time_budget must not be negative, got %v", c.TimeBudget))
	}
	return err
}
