package sim

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/logging"
	"github.com/san-kum/lookahead/internal/obstacle"
)

type Scenario struct {
	Name   string
	Config *config.Config
}

// BatchOptions tune Batch. Metrics, when set, is called once per scenario so
// every run gets its own metric instances.
type BatchOptions struct {
	Workers int
	Metrics func(cfg *config.Config, obstacles obstacle.Index) []Metric
	Logger  *zap.SugaredLogger
}

type BatchResult struct {
	Name   string
	Result *Result
}

// Batch flies every scenario concurrently. Results keep the scenario order.
// The first failing scenario cancels the others and its error is returned.
func Batch(ctx context.Context, scenarios []Scenario, opts BatchOptions) ([]BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	results := make([]BatchResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, sc := range scenarios {
		g.Go(func() error {
			s, err := FromConfig(sc.Config, logger.Named(sc.Name))
			if err != nil {
				return errors.Wrapf(err, "scenario %s", sc.Name)
			}
			if opts.Metrics != nil {
				for _, m := range opts.Metrics(sc.Config, s.Planner().Inputs().Obstacles) {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx)
			if err != nil {
				return errors.Wrapf(err, "scenario %s", sc.Name)
			}
			results[i] = BatchResult{Name: sc.Name, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
