package metrics

import (
	"math"

	"github.com/san-kum/armsim/internal/arm"
)

// Return is the undiscounted sum of rewards.
type Return struct {
	total float64
}

func NewReturn() *Return { return &Return{} }

func (r *Return) Name() string { return "return" }

func (r *Return) Observe(tr arm.Transition, u arm.Action) {
	r.total += tr.Reward
}

func (r *Return) Value() float64 { return r.total }
func (r *Return) Reset()         { r.total = 0 }

// MinDistance is the closest the arm tip came to the target.
type MinDistance struct {
	min float64
}

func NewMinDistance() *MinDistance {
	return &MinDistance{min: math.Inf(1)}
}

func (m *MinDistance) Name() string { return "min_distance" }

func (m *MinDistance) Observe(tr arm.Transition, u arm.Action) {
	m.min = math.Min(m.min, tr.Info.Distance)
}

func (m *MinDistance) Value() float64 { return m.min }
func (m *MinDistance) Reset()         { m.min = math.Inf(1) }

// Steps counts ticks.
type Steps struct {
	n int
}

func NewSteps() *Steps { return &Steps{} }

func (s *Steps) Name() string { return "steps" }

func (s *Steps) Observe(tr arm.Transition, u arm.Action) {
	s.n++
}

func (s *Steps) Value() float64 { return float64(s.n) }
func (s *Steps) Reset()         { s.n = 0 }
