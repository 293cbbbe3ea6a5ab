package export

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/san-kum/lookahead/internal/viz"
)

const background = "#0a0a0a"

// Palette maps canvas inks to SVG fill colors.
var Palette = map[viz.Ink]string{
	viz.InkNone:     "#4a4a4a",
	viz.InkTree:     "#3a3a3a",
	viz.InkTrail:    "#87afff",
	viz.InkObstacle: "#ff5f5f",
	viz.InkPath:     "#00ffff",
	viz.InkGoal:     "#ffff00",
	viz.InkVehicle:  "#ffffff",
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per set dot,
// colored by the ink of its cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.Pixels()
	width := float64(pw) * scale
	height := float64(ph) * scale

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	groups := make(map[viz.Ink]*strings.Builder)
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			ink := canvas.InkAt(col, row)
			sb, ok := groups[ink]
			if !ok {
				sb = &strings.Builder{}
				groups[ink] = sb
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	var sb strings.Builder
	header(&sb, width, height)
	// lower inks first so the path and markers stay on top
	for ink := viz.InkNone; ink <= viz.InkVehicle; ink++ {
		g, ok := groups[ink]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n%s</g>\n", Palette[ink], g.String())
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SceneToSVG draws scene on a w by h cell canvas and converts it.
func SceneToSVG(scene viz.Scene, w, h int, scale float64) string {
	c := viz.NewCanvas(w, h)
	scene.Draw(c)
	return CanvasToSVG(c, scale)
}

// PathToSVG draws the top view of points as one polyline.
func PathToSVG(points []r3.Vector, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
