package planner

import (
	"github.com/golang/geo/r3"
)

// Termination records which exit ended a search.
type Termination int

const (
	TerminationNone Termination = iota
	// TerminationGoal: an origin past the root's first child came within the
	// acceptance radius of the goal.
	TerminationGoal
	// TerminationHorizon: an origin reached twice the maximum sensor range
	// from the start position.
	TerminationHorizon
	// TerminationStuck: no candidate of the root survived deduplication.
	TerminationStuck
	// TerminationExhausted: the expansion cap or time budget ran out.
	TerminationExhausted
)

func (t Termination) String() string {
	switch t {
	case TerminationGoal:
		return "goal"
	case TerminationHorizon:
		return "horizon"
	case TerminationStuck:
		return "stuck"
	case TerminationExhausted:
		return "exhausted"
	default:
		return "none"
	}
}

// ParseTermination is the inverse of Termination.String. Unknown names map to
// TerminationNone.
func ParseTermination(s string) Termination {
	for t := TerminationGoal; t <= TerminationExhausted; t++ {
		if t.String() == s {
			return t
		}
	}
	return TerminationNone
}

// Tree is the result of one planning call. It owns its arena; nothing is
// shared with later calls.
type Tree struct {
	Nodes []TreeNode
	// ClosedSet lists expanded node indices in the order they were closed.
	ClosedSet []int
	// Origin is the node the search stopped at.
	Origin int
	// Path holds setpoints from Origin back to the root; the root's zero
	// setpoint is last.
	Path []r3.Vector
	// NextCommand is the first motion command from the current pose. It is
	// only meaningful when HasNext is true.
	NextCommand r3.Vector
	HasNext     bool
	Termination Termination
	Expansions  int
	// Goal is the goal the search ran toward.
	Goal r3.Vector
}

// Degenerate reports whether the search found no motion at all. Callers
// should treat it as "no safe motion", not as a plan.
func (t *Tree) Degenerate() bool {
	return len(t.Path) <= 1
}

// Commands returns the setpoints in execution order, without the root.
func (t *Tree) Commands() []r3.Vector {
	if len(t.Path) <= 1 {
		return nil
	}
	out := make([]r3.Vector, 0, len(t.Path)-1)
	for i := len(t.Path) - 2; i >= 0; i-- {
		out = append(out, t.Path[i])
	}
	return out
}

// PathIndices returns the node indices from the root to Origin.
func (t *Tree) PathIndices() []int {
	if len(t.Nodes) == 0 {
		return nil
	}
	var rev []int
	for i := t.Origin; i > 0; i = t.Nodes[i].Parent {
		rev = append(rev, i)
	}
	out := make([]int, 0, len(rev)+1)
	out = append(out, 0)
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// TerminalNode returns the node appended by goal or horizon termination.
func (t *Tree) TerminalNode() (TreeNode, bool) {
	if t.Termination != TerminationGoal && t.Termination != TerminationHorizon {
		return TreeNode{}, false
	}
	return t.Nodes[len(t.Nodes)-1], true
}

// Open returns the indices of nodes that were never expanded.
func (t *Tree) Open() []int {
	var out []int
	for _, n := range t.Nodes {
		if !n.Closed {
			out = append(out, n.Index)
		}
	}
	return out
}
