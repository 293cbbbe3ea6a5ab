// Package metrics summarizes closed-loop flights.
package metrics

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/sim"
)

// Standard returns a fresh set of the metrics recorded for every run.
func Standard(start r3.Vector, obstacles obstacle.Index) []sim.Metric {
	return []sim.Metric{
		NewPathLength(start),
		NewMinClearance(obstacles),
		NewTreeSize(),
		NewMaxTreeSize(),
		NewDegeneratePlans(),
	}
}
