package sim_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/metrics"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/sim"
)

func TestBatchKeepsOrder(t *testing.T) {
	g := NewWithT(t)

	near := shortMission()
	timeout := config.DefaultConfig()
	timeout.Mission.Duration = 0.2

	scenarios := []sim.Scenario{
		{Name: "near", Config: near},
		{Name: "timeout", Config: timeout},
	}
	results, err := sim.Batch(context.Background(), scenarios, sim.BatchOptions{
		Workers: 2,
		Metrics: func(cfg *config.Config, obstacles obstacle.Index) []sim.Metric {
			return metrics.Standard(cfg.Mission.Start.R3(), obstacles)
		},
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))

	g.Expect(results[0].Name).To(Equal("near"))
	g.Expect(results[0].Result.Outcome).To(Equal(sim.OutcomeReached))
	g.Expect(results[0].Result.Metrics).To(HaveKey("tree_size"))

	g.Expect(results[1].Name).To(Equal("timeout"))
	g.Expect(results[1].Result.Outcome).To(Equal(sim.OutcomeTimeout))
	g.Expect(results[1].Result.Steps).To(HaveLen(2))
}

func TestBatchReportsFailingScenario(t *testing.T) {
	g := NewWithT(t)

	broken := config.DefaultConfig()
	broken.Obstacles.File = "missing-cloud.csv"

	_, err := sim.Batch(context.Background(), []sim.Scenario{
		{Name: "ok", Config: shortMission()},
		{Name: "broken", Config: broken},
	}, sim.BatchOptions{})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("scenario broken"))
}
