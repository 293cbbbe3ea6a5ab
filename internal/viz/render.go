package viz

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/planner"
)

// Viewport maps a world-frame xy rectangle onto canvas sub-pixels with x to
// the right and y up. Meters are square on screen.
type Viewport struct {
	MinX, MinY float64
	MaxX, MaxY float64
	scale      float64
	offX       float64
	offY       float64
	ch         int
}

// FitViewport frames pts with margin meters around them.
func FitViewport(c *Canvas, margin float64, pts ...r3.Vector) Viewport {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if len(pts) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	minX, minY = minX-margin, minY-margin
	maxX, maxY = maxX+margin, maxY+margin
	spanX := math.Max(maxX-minX, 1e-6)
	spanY := math.Max(maxY-minY, 1e-6)

	cw, ch := c.Pixels()
	scale := math.Min(float64(cw-1)/spanX, float64(ch-1)/spanY)

	v := Viewport{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, scale: scale, ch: ch}
	// center the unused axis
	v.offX = (float64(cw-1) - spanX*scale) / 2
	v.offY = (float64(ch-1) - spanY*scale) / 2
	return v
}

// Pixel returns the sub-pixel of a world point. Points outside the canvas
// map outside its bounds and are clipped when drawn.
func (v Viewport) Pixel(p r3.Vector) (int, int) {
	x := v.offX + (p.X-v.MinX)*v.scale
	y := float64(v.ch-1) - (v.offY + (p.Y-v.MinY)*v.scale)
	return int(math.Round(x)), int(math.Round(y))
}

// Scale is sub-pixels per meter.
func (v Viewport) Scale() float64 { return v.scale }

// Scene is everything a top-down frame can show. Zero fields are skipped.
type Scene struct {
	Tree             *planner.Tree
	Trail            []r3.Vector
	Obstacles        []r3.Vector
	Goal             *r3.Vector
	AcceptanceRadius float64
	Vehicle          *r3.Vector
	// HideTree draws only the chosen path of Tree.
	HideTree bool
}

func (s Scene) bounds() []r3.Vector {
	var pts []r3.Vector
	if s.Tree != nil {
		for _, n := range s.Tree.Nodes {
			pts = append(pts, n.Position())
		}
	}
	pts = append(pts, s.Trail...)
	if s.Goal != nil {
		pts = append(pts, *s.Goal)
	}
	if s.Vehicle != nil {
		pts = append(pts, *s.Vehicle)
	}
	if len(pts) == 0 {
		pts = s.Obstacles
	}
	return pts
}

// Draw clears c and paints the scene. Obstacles outside the frame of the
// other elements are clipped.
func (s Scene) Draw(c *Canvas) Viewport {
	c.Clear()
	v := FitViewport(c, 1.5, s.bounds()...)

	c.Pen(InkObstacle)
	for _, p := range s.Obstacles {
		c.Set(v.Pixel(p))
	}

	if s.Tree != nil && len(s.Tree.Nodes) > 0 {
		if !s.HideTree {
			c.Pen(InkTree)
			for _, n := range s.Tree.Nodes[1:] {
				segment(c, v, s.Tree.Nodes[n.Parent].Position(), n.Position())
			}
		}
		c.Pen(InkPath)
		path := s.Tree.PathIndices()
		for i := 1; i < len(path); i++ {
			segment(c, v, s.Tree.Nodes[path[i-1]].Position(), s.Tree.Nodes[path[i]].Position())
		}
	}

	c.Pen(InkTrail)
	for i := 1; i < len(s.Trail); i++ {
		segment(c, v, s.Trail[i-1], s.Trail[i])
	}

	if s.Goal != nil {
		c.Pen(InkGoal)
		if s.AcceptanceRadius > 0 {
			circle(c, v, *s.Goal, s.AcceptanceRadius)
		}
		cross(c, v, *s.Goal, 2)
	}
	if s.Vehicle != nil {
		c.Pen(InkVehicle)
		cross(c, v, *s.Vehicle, 1)
	}
	return v
}

func segment(c *Canvas, v Viewport, a, b r3.Vector) {
	x0, y0 := v.Pixel(a)
	x1, y1 := v.Pixel(b)
	c.DrawLine(x0, y0, x1, y1)
}

func cross(c *Canvas, v Viewport, p r3.Vector, arm int) {
	x, y := v.Pixel(p)
	c.DrawLine(x-arm, y-arm, x+arm, y+arm)
	c.DrawLine(x-arm, y+arm, x+arm, y-arm)
}

func circle(c *Canvas, v Viewport, center r3.Vector, radius float64) {
	steps := int(math.Max(12, 2*math.Pi*radius*v.Scale()))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(v.Pixel(center.Add(r3.Vector{X: radius * math.Cos(a), Y: radius * math.Sin(a)})))
	}
}

// RenderTree draws a planning tree from above: every edge, the chosen path,
// obstacles and the goal.
func RenderTree(tree *planner.Tree, obstacles []r3.Vector, w, h int) string {
	c := NewCanvas(w, h)
	goal := tree.Goal
	scene := Scene{Tree: tree, Obstacles: obstacles, Goal: &goal}
	if len(tree.Nodes) > 0 {
		root := tree.Nodes[0].Position()
		scene.Vehicle = &root
	}
	v := scene.Draw(c)
	return c.String() + caption(v, fmt.Sprintf("%d nodes, %s", len(tree.Nodes), tree.Termination))
}

// RenderMission draws a flown trajectory with the last tree built along it.
func RenderMission(trail []r3.Vector, tree *planner.Tree, obstacles []r3.Vector, goal r3.Vector, acceptance float64, w, h int) string {
	c := NewCanvas(w, h)
	scene := Scene{
		Tree:             tree,
		Trail:            trail,
		Obstacles:        obstacles,
		Goal:             &goal,
		AcceptanceRadius: acceptance,
		HideTree:         true,
	}
	if len(trail) > 0 {
		scene.Vehicle = &trail[len(trail)-1]
	}
	v := scene.Draw(c)
	return c.String() + caption(v, fmt.Sprintf("%d samples", len(trail)))
}

func caption(v Viewport, detail string) string {
	return fmt.Sprintf("x [%.1f, %.1f] m  y [%.1f, %.1f] m  %s\n", v.MinX, v.MaxX, v.MinY, v.MaxY, detail)
}
