package experiment

import (
	"context"

	"github.com/san-kum/armsim/internal/optim"
	"github.com/san-kum/armsim/internal/sim"
)

// GainObjective scores a parameter assignment, usually controller gains, by
// the mean return of runs independently seeded episodes.
func (e *Experiment) GainObjective(runs int) optim.Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := e.cfg.Clone()
		if err := cfg.Apply(params); err != nil {
			return 0, err
		}
		exp, err := New(cfg, nil)
		if err != nil {
			return 0, err
		}
		results, err := exp.Ensemble(runs).Run(ctx)
		if err != nil {
			return 0, err
		}
		s := sim.Summarize(results)
		e.logger.Debugw("evaluated gains", "params", params, "mean_return", s.MeanReturn, "successes", s.Successes)
		return s.MeanReturn, nil
	}
}
