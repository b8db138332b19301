package sim

import "github.com/san-kum/armsim/internal/arm"

// Env is the step/reset contract the runner drives. *arm.Engine satisfies it.
type Env interface {
	Reset() arm.Observation
	Step(a arm.Action) arm.Transition
	Time() float64
	Trajectory() []arm.Snapshot
	Counters() arm.Counters
}

type Controller interface {
	Compute(obs arm.Observation, t float64) arm.Action
}

// Resetter is implemented by controllers that keep state across ticks. The
// runner resets them at the start of every episode.
type Resetter interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(tr arm.Transition, u arm.Action)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(tr arm.Transition, u arm.Action, t float64)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(tr arm.Transition, u arm.Action, t float64)

func (f ObserverFunc) OnStep(tr arm.Transition, u arm.Action, t float64) { f(tr, u, t) }

type Result struct {
	Observations []arm.Observation
	Actions      []arm.Action
	Rewards      []float64
	Times        []float64
	Trajectory   []arm.Snapshot
	Outcome      arm.Outcome
	Return       float64
	Steps        int
	Metrics      map[string]float64
	Counters     arm.Counters
}
