package analysis

import (
	"strings"

	"github.com/san-kum/armsim/internal/arm"
)

type Point struct{ X, Y float64 }

// Portrait is a 2D phase plot of a single run.
type Portrait struct {
	Points []Point
}

// ClosingPortrait plots distance against closing speed, the rate at which
// the distance shrinks.
func ClosingPortrait(snaps []arm.Snapshot) *Portrait {
	d := Distances(snaps)
	p := &Portrait{Points: make([]Point, 0, len(d))}
	for i := 1; i < len(d); i++ {
		dt := snaps[i].Time - snaps[i-1].Time
		if dt <= 0 {
			continue
		}
		p.Points = append(p.Points, Point{X: d[i], Y: (d[i-1] - d[i]) / dt})
	}
	return p
}

// PortraitToASCII renders the portrait with 10% padding and draws the axes
// where they cross the visible area.
func PortraitToASCII(p *Portrait, width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
