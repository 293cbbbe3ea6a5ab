package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/sim"
)

// TreeSize is the mean number of nodes per planning call.
type TreeSize struct {
	name  string
	sizes []float64
}

func NewTreeSize() *TreeSize {
	return &TreeSize{name: "tree_size"}
}

func (t *TreeSize) Name() string { return t.name }

func (t *TreeSize) Observe(step sim.Step, _ *planner.Tree) {
	t.sizes = append(t.sizes, float64(step.TreeSize))
}

func (t *TreeSize) Value() float64 {
	if len(t.sizes) == 0 {
		return 0
	}
	return floats.Sum(t.sizes) / float64(len(t.sizes))
}

func (t *TreeSize) Reset() { t.sizes = t.sizes[:0] }

// MaxTreeSize is the largest tree built.
type MaxTreeSize struct {
	TreeSize
}

func NewMaxTreeSize() *MaxTreeSize {
	return &MaxTreeSize{TreeSize{name: "max_tree_size"}}
}

func (m *MaxTreeSize) Value() float64 {
	if len(m.sizes) == 0 {
		return 0
	}
	return floats.Max(m.sizes)
}

// DegeneratePlans counts planning calls that found no motion.
type DegeneratePlans struct {
	name  string
	count int
}

func NewDegeneratePlans() *DegeneratePlans {
	return &DegeneratePlans{name: "degenerate_plans"}
}

func (d *DegeneratePlans) Name() string { return d.name }

func (d *DegeneratePlans) Observe(step sim.Step, _ *planner.Tree) {
	if step.Degenerate {
		d.count++
	}
}

func (d *DegeneratePlans) Value() float64 { return float64(d.count) }

func (d *DegeneratePlans) Reset() { d.count = 0 }
