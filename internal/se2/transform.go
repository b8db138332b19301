package se2

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is a pose in the plane backed by a homogeneous 3x3 matrix.
type Transform struct {
	m *mat.Dense
}

// ComputeMatrix builds the homogeneous matrix of a rotation by theta followed
// by a translation t.
func ComputeMatrix(t r2.Vec, theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		c, -s, t.X,
		s, c, t.Y,
		0, 0, 1,
	})
}

func New(t r2.Vec, theta float64) *Transform {
	return &Transform{m: ComputeMatrix(t, theta)}
}

func Identity() *Transform {
	return New(r2.Vec{}, 0)
}

// FromMatrix copies a 3x3 homogeneous matrix into a new pose. The caller is
// responsible for m holding a valid rotation block and bottom row.
func FromMatrix(m mat.Matrix) *Transform {
	if r, c := m.Dims(); r != 3 || c != 3 {
		panic(fmt.Sprintf("se2: expected 3x3 matrix, got %dx%d", r, c))
	}
	return &Transform{m: mat.DenseCopyOf(m)}
}

// Compose returns a·b.
func Compose(a, b *Transform) *Transform {
	out := mat.NewDense(3, 3, nil)
	out.Mul(a.m, b.m)
	return &Transform{m: out}
}

// Chain composes the poses left to right. Chain() is the identity.
func Chain(ts ...*Transform) *Transform {
	if len(ts) == 0 {
		return Identity()
	}
	out := ts[0].Clone()
	for _, t := range ts[1:] {
		out = Compose(out, t)
	}
	return out
}

// Inverse returns the closed-form SE(2) inverse: rotation Rᵀ, translation -Rᵀt.
func (t *Transform) Inverse() *Transform {
	c, s := t.m.At(0, 0), t.m.At(1, 0)
	x, y := t.m.At(0, 2), t.m.At(1, 2)
	return &Transform{m: mat.NewDense(3, 3, []float64{
		c, s, -(c*x + s*y),
		-s, c, s*x - c*y,
		0, 0, 1,
	})}
}

// Apply transforms a point, treating it as the homogeneous column [x y 1].
func (t *Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: t.m.At(0, 0)*p.X + t.m.At(0, 1)*p.Y + t.m.At(0, 2),
		Y: t.m.At(1, 0)*p.X + t.m.At(1, 1)*p.Y + t.m.At(1, 2),
	}
}

// ApplyBatch transforms a 3xN matrix of homogeneous column points.
func (t *Transform) ApplyBatch(pts mat.Matrix) *mat.Dense {
	if r, _ := pts.Dims(); r != 3 {
		panic(fmt.Sprintf("se2: expected 3xN homogeneous points, got %d rows", r))
	}
	var out mat.Dense
	out.Mul(t.m, pts)
	return &out
}

// Increment right-multiplies the pose by the delta pose (dt, dTheta), i.e. it
// moves the pose by dt and rotates it by dTheta in its own frame.
func (t *Transform) Increment(dt r2.Vec, dTheta float64) {
	var out mat.Dense
	out.Mul(t.m, ComputeMatrix(dt, dTheta))
	t.m.Copy(&out)
}

func (t *Transform) X() float64 { return t.m.At(0, 2) }
func (t *Transform) Y() float64 { return t.m.At(1, 2) }

func (t *Transform) SetX(x float64) { t.m.Set(0, 2, x) }
func (t *Transform) SetY(y float64) { t.m.Set(1, 2, y) }

func (t *Transform) Translation() r2.Vec {
	return r2.Vec{X: t.X(), Y: t.Y()}
}

func (t *Transform) SetTranslation(p r2.Vec) {
	t.SetX(p.X)
	t.SetY(p.Y)
}

// Angle returns the rotation angle in (-π, π].
func (t *Transform) Angle() float64 {
	return math.Atan2(t.m.At(1, 0), t.m.At(0, 0))
}

// SetAngle rebuilds the rotation block. The translation is left untouched.
func (t *Transform) SetAngle(theta float64) {
	s, c := math.Sincos(theta)
	t.m.Set(0, 0, c)
	t.m.Set(0, 1, -s)
	t.m.Set(1, 0, s)
	t.m.Set(1, 1, c)
}

// Rotation returns a copy of the 2x2 rotation block.
func (t *Transform) Rotation() *mat.Dense {
	return mat.DenseCopyOf(t.m.Slice(0, 2, 0, 2))
}

// Matrix returns a copy of the homogeneous matrix.
func (t *Transform) Matrix() *mat.Dense {
	return mat.DenseCopyOf(t.m)
}

func (t *Transform) Reset() {
	t.m.Copy(ComputeMatrix(r2.Vec{}, 0))
}

func (t *Transform) Clone() *Transform {
	return &Transform{m: mat.DenseCopyOf(t.m)}
}

// ApproxEqual reports whether every matrix entry of t and o differs by at most tol.
func (t *Transform) ApproxEqual(o *Transform, tol float64) bool {
	return mat.EqualApprox(t.m, o.m, tol)
}

func (t *Transform) String() string {
	return fmt.Sprintf("se2(x=%.4f, y=%.4f, θ=%.4f)", t.X(), t.Y(), t.Angle())
}
