// Package obstacle provides the nearest-neighbor structure the cost evaluator
// queries for obstacle proximity.
package obstacle

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Index is a read-only set of obstacle points.
type Index interface {
	Len() int
	// Nearest returns the closest obstacle to p and its distance. ok is false
	// when the index is empty.
	Nearest(p r3.Vector) (nearest r3.Vector, dist float64, ok bool)
	// Within returns the obstacles no farther than radius from p, closest first.
	Within(p r3.Vector, radius float64) []r3.Vector
}

// KDTree is an Index backed by a static gonum k-d tree.
type KDTree struct {
	tree   *kdtree.Tree
	points []r3.Vector
}

// NewKDTree builds an index over a copy of points.
func NewKDTree(points []r3.Vector) *KDTree {
	kp := make(kdtree.Points, len(points))
	for i, p := range points {
		kp[i] = kdtree.Point{p.X, p.Y, p.Z}
	}
	owned := make([]r3.Vector, len(points))
	copy(owned, points)
	return &KDTree{tree: kdtree.New(kp, false), points: owned}
}

// Empty returns an index with no obstacles.
func Empty() *KDTree {
	return NewKDTree(nil)
}

// A nil *KDTree behaves as an empty index.
func (k *KDTree) Len() int {
	if k == nil {
		return 0
	}
	return len(k.points)
}

// Points returns a copy of the indexed points.
func (k *KDTree) Points() []r3.Vector {
	if k == nil {
		return nil
	}
	out := make([]r3.Vector, len(k.points))
	copy(out, k.points)
	return out
}

func (k *KDTree) Nearest(p r3.Vector) (r3.Vector, float64, bool) {
	if k.Len() == 0 {
		return r3.Vector{}, math.Inf(1), false
	}
	c, d2 := k.tree.Nearest(kdtree.Point{p.X, p.Y, p.Z})
	if c == nil {
		return r3.Vector{}, math.Inf(1), false
	}
	return toVector(c), math.Sqrt(d2), true
}

func (k *KDTree) Within(p r3.Vector, radius float64) []r3.Vector {
	if k.Len() == 0 || radius < 0 {
		return nil
	}
	// kdtree.Point distances are squared
	keep := kdtree.NewDistKeeper(radius * radius)
	k.tree.NearestSet(keep, kdtree.Point{p.X, p.Y, p.Z})

	hits := make([]kdtree.ComparableDist, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable != nil {
			hits = append(hits, cd)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })

	out := make([]r3.Vector, len(hits))
	for i, cd := range hits {
		out[i] = toVector(cd.Comparable)
	}
	return out
}

func toVector(c kdtree.Comparable) r3.Vector {
	p := c.(kdtree.Point)
	return r3.Vector{X: p[0], Y: p[1], Z: p[2]}
}
