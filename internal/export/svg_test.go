package export

import (
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lookahead/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	g := NewWithT(t)

	g.Expect(CanvasToSVG(nil, 1)).To(BeEmpty())

	c := viz.NewCanvas(2, 1)
	c.Pen(viz.InkGoal)
	c.Set(0, 0)
	c.Pen(viz.InkTrail)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 10)
	g.Expect(svg).To(HavePrefix("<?xml"))
	g.Expect(svg).To(HaveSuffix("</svg>"))
	g.Expect(svg).To(ContainSubstring(`width="40" height="40"`))
	g.Expect(strings.Count(svg, "<circle")).To(Equal(2))
	g.Expect(svg).To(ContainSubstring(`<circle cx="5.0" cy="5.0" r="4.0"/>`))
	g.Expect(svg).To(ContainSubstring(`<circle cx="35.0" cy="35.0" r="4.0"/>`))

	trail := strings.Index(svg, Palette[viz.InkTrail])
	goal := strings.Index(svg, Palette[viz.InkGoal])
	g.Expect(trail).To(BeNumerically(">", 0))
	g.Expect(goal).To(BeNumerically(">", trail))
}

func TestPathToSVG(t *testing.T) {
	g := NewWithT(t)

	g.Expect(PathToSVG([]r3.Vector{{}}, 100, 100, "#fff")).To(BeEmpty())

	svg := PathToSVG([]r3.Vector{{X: 0}, {X: 10}}, 120, 60, "#00ff00")
	g.Expect(svg).To(ContainSubstring(`stroke="#00ff00"`))
	g.Expect(svg).To(ContainSubstring("M10.0,55.0 L110.0,55.0"))
}

func TestSceneToSVG(t *testing.T) {
	g := NewWithT(t)

	goal := r3.Vector{X: 1, Y: 1}
	svg := SceneToSVG(viz.Scene{
		Trail: []r3.Vector{{}, {X: 1}},
		Goal:  &goal,
	}, 20, 10, 2)

	g.Expect(svg).To(ContainSubstring(Palette[viz.InkGoal]))
	g.Expect(svg).To(ContainSubstring(Palette[viz.InkTrail]))
	g.Expect(svg).NotTo(ContainSubstring(Palette[viz.InkObstacle]))
}
