package controllers

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/arm"
)

// Tracking is a proportional feedback law on the hierarchical error signal:
// drive the base towards the target seen from the base frame, and turn each
// joint towards the target seen from that joint.
type Tracking struct {
	Kv float64
	Kb float64
	K1 float64
	K2 float64
}

func NewTracking(kv, kb, k1, k2 float64) *Tracking {
	return &Tracking{Kv: kv, Kb: kb, K1: k1, K2: k2}
}

func NewDefaultTracking() *Tracking {
	return NewTracking(1, 1, 1, 1)
}

func (c *Tracking) Compute(obs arm.Observation, t float64) arm.Action {
	e := trackingErrors(obs)
	return arm.Action{c.Kv * e[0], c.Kb * e[1], c.K1 * e[2], c.K2 * e[3]}
}

// trackingErrors lines up one error per action channel: the distance and
// bearing of err3, then the bearings of err2 and err1.
func trackingErrors(obs arm.Observation) [arm.ActionDim]float64 {
	err1, err2, err3 := obs.Err1(), obs.Err2(), obs.Err3()
	return [arm.ActionDim]float64{
		r2.Norm(err3),
		math.Atan2(err3.Y, err3.X),
		math.Atan2(err2.Y, err2.X),
		math.Atan2(err1.Y, err1.X),
	}
}
