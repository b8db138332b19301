package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/arm"
)

const (
	tipColor    = "#00ff00"
	targetColor = "#ff5f5f"
	baseColor   = "#5fafff"
	armColor    = "#e0e0e0"
)

// TrajectorySVG draws the workspace square with the base, end effector and
// target paths of an episode, plus the arm in its final pose.
func TrajectorySVG(snaps []arm.Snapshot, boundary, width, height int) string {
	if len(snaps) == 0 || boundary <= 0 {
		return ""
	}

	b := float64(boundary)
	toPx := func(p r2.Vec) r2.Vec {
		return r2.Vec{
			X: (p.X + b) / (2 * b) * float64(width),
			Y: float64(height) - (p.Y+b)/(2*b)*float64(height),
		}
	}

	base := make([]r2.Vec, len(snaps))
	tip := make([]r2.Vec, len(snaps))
	target := make([]r2.Vec, len(snaps))
	for i, s := range snaps {
		base[i] = toPx(s.Base.Translation())
		tip[i] = toPx(s.Link2.Translation())
		target[i] = toPx(s.Target.Translation())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="#303030"/>
`, width, height, width, height, width-1, height-1))

	writePath(&sb, base, baseColor, "1")
	writePath(&sb, target, targetColor, "1.5")
	writePath(&sb, tip, tipColor, "1.5")

	last := snaps[len(snaps)-1]
	writePath(&sb, []r2.Vec{
		toPx(last.Base.Translation()),
		toPx(last.Link1.Translation()),
		toPx(last.Link2.Translation()),
	}, armColor, "3")

	t := toPx(last.Target.Translation())
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, t.X, t.Y, targetColor))
	sb.WriteString(fmt.Sprintf(`<text x="8" y="18" fill="#a0a0a0" font-family="monospace" font-size="12">t=%.2f reward=%.2f</text>
`, last.Time, last.Reward))

	sb.WriteString("</svg>")
	return sb.String()
}

// PathSVG renders a single polyline scaled to fit the image.
func PathSVG(points []r2.Vec, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

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

	scaled := make([]r2.Vec, len(points))
	for i, p := range points {
		scaled[i] = r2.Vec{
			X: (p.X - minX) / rangeX * float64(width),
			Y: float64(height) - (p.Y-minY)/rangeY*float64(height),
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
	writePath(&sb, scaled, strokeColor, "1.5")
	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, pts []r2.Vec, stroke, width string) {
	if len(pts) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%s" d="M`, stroke, width))
	for i, p := range pts {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}
	sb.WriteString("\"/>\n")
}
