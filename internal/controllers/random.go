package controllers

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/armsim/internal/arm"
)

// Random samples uniformly from the action space.
type Random struct {
	dists [arm.ActionDim]distuv.Uniform
}

func NewRandom(seed uint64) *Random {
	src := rand.NewPCG(seed, seed+1)
	r := &Random{}
	for i, b := range arm.ActionSpace().Bounds {
		r.dists[i] = distuv.Uniform{Min: b.Min, Max: b.Max, Src: src}
	}
	return r
}

func (r *Random) Compute(obs arm.Observation, t float64) arm.Action {
	var a arm.Action
	for i := range a {
		a[i] = r.dists[i].Rand()
	}
	return a
}
