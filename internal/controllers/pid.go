package controllers

import "github.com/san-kum/armsim/internal/arm"

// PID applies the same PID law to each channel of the tracking error.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	integral [arm.ActionDim]float64
	prevErr  [arm.ActionDim]float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, first: true}
}

func (p *PID) Compute(obs arm.Observation, t float64) arm.Action {
	e := trackingErrors(obs)

	var u arm.Action
	if p.first {
		p.prevErr = e
		p.prevT = t
		p.first = false
		for i := range e {
			u[i] = p.Kp * e[i]
		}
		return u
	}

	dt := t - p.prevT
	for i := range e {
		u[i] = p.Kp * e[i]
		if dt > 0 {
			p.integral[i] += e[i] * dt
			u[i] += p.Ki*p.integral[i] + p.Kd*(e[i]-p.prevErr[i])/dt
		}
	}
	if dt > 0 {
		p.prevErr = e
		p.prevT = t
	}
	return u
}

// Reset clears integral and derivative state between episodes.
func (p *PID) Reset() {
	p.integral = [arm.ActionDim]float64{}
	p.prevErr = [arm.ActionDim]float64{}
	p.prevT = 0
	p.first = true
}
