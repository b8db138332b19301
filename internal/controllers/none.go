package controllers

import "github.com/san-kum/armsim/internal/arm"

// None holds the arm still.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(obs arm.Observation, t float64) arm.Action {
	return arm.Action{}
}
