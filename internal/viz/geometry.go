package viz

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/arm"
)

// Outlines in homogeneous coordinates, one point per column, expressed in the
// frame of the part they belong to.
var (
	robotGeom = mat.NewDense(3, 4, []float64{
		0.3, -0.2, -0.2, 0.3,
		0, 0.2, -0.2, 0,
		1, 1, 1, 1,
	})
	gripperGeom = mat.NewDense(3, 4, []float64{
		0.1, -0.1, -0.1, 0.1,
		0.1, 0.1, -0.1, -0.1,
		1, 1, 1, 1,
	})
)

// link2Geom runs from the elbow to just behind the gripper, in the
// end-effector frame.
func link2Geom(length float64) *mat.Dense {
	return mat.NewDense(3, 2, []float64{
		-length, -0.1,
		0, 0,
		1, 1,
	})
}

// DrawSnapshot renders the workspace border, base triangle, both links,
// gripper and target of one trajectory entry.
func DrawSnapshot(c *Canvas, v Viewport, s arm.Snapshot, cfg arm.Config) {
	b := float64(cfg.Boundary)
	corners := []r2.Vec{{X: -b, Y: -b}, {X: b, Y: -b}, {X: b, Y: b}, {X: -b, Y: b}, {X: -b, Y: -b}}
	for i := 1; i < len(corners); i++ {
		v.Line(c, corners[i-1], corners[i])
	}

	v.Polyline(c, s.Base.ApplyBatch(robotGeom))
	v.Line(c, s.Base.Translation(), s.Link1.Translation())
	ex, ey := v.Project(s.Link1.Translation())
	c.Dot(ex, ey, 1)
	v.Polyline(c, s.Link2.ApplyBatch(link2Geom(cfg.Link2)))
	v.Polyline(c, s.Link2.ApplyBatch(gripperGeom))

	tx, ty := v.Project(s.Target.Translation())
	c.Dot(tx, ty, 1)
}
