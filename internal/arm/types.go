package arm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/se2"
)

const (
	ObservationDim = 8
	ActionDim      = 4
)

// Observation is the target in the link2 frame, then that vector carried
// back through the link1 offset, link1 and joint2, and joint1 in turn.
type Observation [ObservationDim]float64

func observationOf(segments ...r2.Vec) Observation {
	var o Observation
	for i, v := range segments {
		o[2*i] = v.X
		o[2*i+1] = v.Y
	}
	return o
}

// Segment returns the i-th 2D block of the observation (0 ≤ i < 4).
func (o Observation) Segment(i int) r2.Vec {
	return r2.Vec{X: o[2*i], Y: o[2*i+1]}
}

func (o Observation) LinkToTarget() r2.Vec { return o.Segment(0) }
func (o Observation) Err1() r2.Vec         { return o.Segment(1) }
func (o Observation) Err2() r2.Vec         { return o.Segment(2) }
func (o Observation) Err3() r2.Vec         { return o.Segment(3) }

func (o Observation) Slice() []float64 {
	s := make([]float64, ObservationDim)
	copy(s, o[:])
	return s
}

// Action is [forward speed, base turn rate, joint1 rate, joint2 rate].
type Action [ActionDim]float64

func (a Action) Slice() []float64 {
	s := make([]float64, ActionDim)
	copy(s, a[:])
	return s
}

// ActionFromSlice copies up to ActionDim values; missing entries stay zero.
func ActionFromSlice(s []float64) Action {
	var a Action
	copy(a[:], s)
	return a
}

// Space describes the bounds of a vector space, per dimension.
type Space struct {
	Bounds []r1.Interval
}

func (s Space) Dim() int { return len(s.Bounds) }

func (s Space) Low() []float64 {
	out := make([]float64, len(s.Bounds))
	for i, b := range s.Bounds {
		out[i] = b.Min
	}
	return out
}

func (s Space) High() []float64 {
	out := make([]float64, len(s.Bounds))
	for i, b := range s.Bounds {
		out[i] = b.Max
	}
	return out
}

func (s Space) Contains(v []float64) bool {
	if len(v) != len(s.Bounds) {
		return false
	}
	for i, b := range s.Bounds {
		if v[i] < b.Min || v[i] > b.Max {
			return false
		}
	}
	return true
}

// Clip clamps v element-wise into the space. Extra elements are dropped and
// NaN becomes the lower bound.
func (s Space) Clip(v []float64) []float64 {
	out := make([]float64, len(s.Bounds))
	for i, b := range s.Bounds {
		if i < len(v) {
			out[i] = clip(v[i], b)
		}
	}
	return out
}

// clip maps NaN to the lower bound.
func clip(x float64, b r1.Interval) float64 {
	if math.IsNaN(x) {
		return b.Min
	}
	return math.Max(b.Min, math.Min(b.Max, x))
}

var actionBounds = [ActionDim]r1.Interval{
	{Min: 0, Max: 1},
	{Min: -2 * math.Pi, Max: 2 * math.Pi},
	{Min: -2 * math.Pi, Max: 2 * math.Pi},
	{Min: -math.Pi, Max: math.Pi},
}

// ActionSpace is the same for every engine.
func ActionSpace() Space {
	b := make([]r1.Interval, ActionDim)
	copy(b, actionBounds[:])
	return Space{Bounds: b}
}

// ClipAction clamps an action into ActionSpace. NaN entries become the lower
// bound of their dimension.
func ClipAction(a Action) Action {
	for i, b := range actionBounds {
		a[i] = clip(a[i], b)
	}
	return a
}

// ObservationSpace derives the observation bounds from the workspace size
// and link lengths.
func ObservationSpace(cfg Config) Space {
	b := float64(cfg.Boundary)
	high := []float64{b, b, b + cfg.Link1, b + cfg.Link1, b + cfg.Link2, b + cfg.Link2, b, b}
	bounds := make([]r1.Interval, len(high))
	for i, h := range high {
		bounds[i] = r1.Interval{Min: -h, Max: h}
	}
	return Space{Bounds: bounds}
}

// Outcome tells why a tick ended the episode, if it did.
type Outcome int

const (
	Running Outcome = iota
	Success
	OutOfBounds
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Success:
		return "success"
	case OutOfBounds:
		return "out_of_bounds"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Counters accumulate over every episode an engine has run.
type Counters struct {
	Successes   int
	OutOfBounds int
	Timeouts    int
}

type Info struct {
	Outcome  Outcome
	Distance float64
	Counters Counters
}

type Transition struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        Info
}

// Snapshot is one entry of the trajectory buffer consumed by renderers.
type Snapshot struct {
	Base   *se2.Transform
	Link1  *se2.Transform
	Link2  *se2.Transform
	Target *se2.Transform
	Time   float64
	Reward float64
}
