package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/armsim/internal/arm"
)

// ControlEffort is the mean L1 norm of the applied actions.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(tr arm.Transition, u arm.Action) {
	c.sum += floats.Norm(arm.ClipAction(u).Slice(), 1)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
