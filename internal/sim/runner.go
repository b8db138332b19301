package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/armsim/internal/arm"
)

// Runner plays episodes of an Env with a fixed controller.
type Runner struct {
	env        Env
	controller Controller
	metrics    []Metric
	observers  []Observer
	logger     *zap.SugaredLogger
	maxSteps   int
}

func New(env Env, controller Controller) *Runner {
	return &Runner{
		env:        env,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop().Sugar(),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) SetLogger(l *zap.SugaredLogger) { r.logger = l }

// SetStepLimit bounds the number of steps per episode independently of the
// environment's own termination. Zero means no limit.
func (r *Runner) SetStepLimit(n int) { r.maxSteps = n }

// Run resets the environment and steps it until the episode ends, the step
// limit is hit or ctx is canceled. The partial result is returned together
// with ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for _, m := range r.metrics {
		m.Reset()
	}
	if c, ok := r.controller.(Resetter); ok {
		c.Reset()
	}

	obs := r.env.Reset()
	result := &Result{
		Observations: []arm.Observation{obs},
		Times:        []float64{r.env.Time()},
		Metrics:      make(map[string]float64),
	}

	for {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		u := r.controller.Compute(obs, r.env.Time())
		tr := r.env.Step(u)

		for _, m := range r.metrics {
			m.Observe(tr, u)
		}
		for _, o := range r.observers {
			o.OnStep(tr, u, r.env.Time())
		}

		obs = tr.Observation
		result.Observations = append(result.Observations, obs)
		result.Actions = append(result.Actions, u)
		result.Rewards = append(result.Rewards, tr.Reward)
		result.Times = append(result.Times, r.env.Time())
		result.Return += tr.Reward
		result.Steps++
		result.Outcome = tr.Info.Outcome

		if tr.Done || (r.maxSteps > 0 && result.Steps >= r.maxSteps) {
			break
		}
	}

	r.finish(result)
	r.logger.Debugw("episode finished",
		"outcome", result.Outcome.String(),
		"steps", result.Steps,
		"return", result.Return,
	)
	return result, nil
}

func (r *Runner) finish(result *Result) {
	result.Trajectory = r.env.Trajectory()
	result.Counters = r.env.Counters()
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunEpisodes plays n consecutive episodes on the same environment.
func (r *Runner) RunEpisodes(ctx context.Context, n int) ([]*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("episode count must be positive, got %d", n)
	}
	results := make([]*Result, 0, n)
	for i := 0; i < n; i++ {
		res, err := r.Run(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
