package planner

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/dynamo"
)

// TreeNode is one entry of the search arena. Parent is always smaller than
// Index except at the root, which is its own parent.
type TreeNode struct {
	Index    int
	Parent   int
	State    dynamo.SimulationState
	Setpoint r3.Vector
	// H is the weighted distance to the goal, F the cost-to-come plus H.
	H      float64
	F      float64
	Closed bool
}

func (n TreeNode) Position() r3.Vector { return n.State.Position }

func (n TreeNode) Velocity() r3.Vector { return n.State.Velocity }

// G is the accumulated edge cost from the root.
func (n TreeNode) G() float64 { return n.F - n.H }

func (n TreeNode) IsRoot() bool { return n.Index == 0 }
