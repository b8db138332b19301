// Package noise provides scalar stochastic processes used to perturb the
// target heading.
package noise

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultMu    = 0.0
	DefaultTheta = 0.1
	DefaultSigma = 0.2
)

// Source yields one perturbation per simulation tick.
type Source interface {
	Next() float64
}

// Func adapts a plain function to a Source.
type Func func() float64

func (f Func) Next() float64 { return f() }

// Zero is a Source that never perturbs.
type Zero struct{}

func (Zero) Next() float64 { return 0 }

// Constant always returns the same value.
type Constant float64

func (c Constant) Next() float64 { return float64(c) }

// OU is a discretised Ornstein-Uhlenbeck process:
//
//	x ← x + θ(μ − x)dt + σ√dt·N(0, 1)
type OU struct {
	Mu    float64
	Theta float64
	Sigma float64
	Dt    float64

	x      float64
	normal distuv.Normal
}

func NewOU(mu, theta, sigma, dt float64, src rand.Source) *OU {
	return &OU{
		Mu:     mu,
		Theta:  theta,
		Sigma:  sigma,
		Dt:     dt,
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func (o *OU) Next() float64 {
	o.x += o.Theta*(o.Mu-o.x)*o.Dt + o.Sigma*math.Sqrt(o.Dt)*o.normal.Rand()
	return o.x
}

// Value returns the current state without advancing the process.
func (o *OU) Value() float64 { return o.x }

func (o *OU) Reset() { o.x = 0 }

// OUFactory returns a constructor that builds a fresh OU process for a given
// timestep. All processes built by the factory draw from src.
func OUFactory(mu, theta, sigma float64, src rand.Source) func(dt float64) Source {
	return func(dt float64) Source {
		return NewOU(mu, theta, sigma, dt, src)
	}
}
