package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// sub-pixels; anything outside is ignored.
func (c *Canvas) Set(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= bit
}

func (c *Canvas) Unset(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= bit
	c.Grid[row][col] |= brailleBlank
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.locate(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) locate(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dot fills a (2r+1) square around (x, y).
func (c *Canvas) Dot(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps world coordinates onto canvas sub-pixels, y up.
type Viewport struct {
	cx, cy float64
	scale  float64
}

// NewViewport fits the square [-half, half]² into c, centred.
func NewViewport(c *Canvas, half float64) Viewport {
	cw, ch := float64(c.Width*2), float64(c.Height*4)
	return Viewport{
		cx:    cw / 2,
		cy:    ch / 2,
		scale: (math.Min(cw, ch) - 2) / (2 * half),
	}
}

func (v Viewport) Project(p r2.Vec) (int, int) {
	return int(math.Round(v.cx + p.X*v.scale)), int(math.Round(v.cy - p.Y*v.scale))
}

func (v Viewport) Line(c *Canvas, a, b r2.Vec) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

// Polyline joins the columns of a 3xN homogeneous point batch.
func (v Viewport) Polyline(c *Canvas, pts mat.Matrix) {
	_, n := pts.Dims()
	for j := 1; j < n; j++ {
		v.Line(c,
			r2.Vec{X: pts.At(0, j-1), Y: pts.At(1, j-1)},
			r2.Vec{X: pts.At(0, j), Y: pts.At(1, j)},
		)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
