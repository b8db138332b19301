package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/armsim/internal/arm"
)

// Factory builds an independent runner for one ensemble member.
type Factory func(seed int64) (*Runner, error)

// Ensemble runs one episode per seed, each on its own environment.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			r, err := e.factory(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			res, err := r.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary aggregates the outcomes of a batch of episodes.
type Summary struct {
	Episodes    int
	Successes   int
	OutOfBounds int
	Timeouts    int
	MeanReturn  float64
	MeanSteps   float64
}

func Summarize(results []*Result) Summary {
	s := Summary{Episodes: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		switch r.Outcome {
		case arm.Success:
			s.Successes++
		case arm.OutOfBounds:
			s.OutOfBounds++
		case arm.Timeout:
			s.Timeouts++
		}
		s.MeanReturn += r.Return
		s.MeanSteps += float64(r.Steps)
	}
	s.MeanReturn /= float64(len(results))
	s.MeanSteps /= float64(len(results))
	return s
}
