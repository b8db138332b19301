package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/noise"
	"github.com/san-kum/armsim/internal/sim"
)

// Experiment turns a configuration into engines and runners.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *zap.SugaredLogger
}

func New(cfg *config.Config, logger *zap.SugaredLogger) (*Experiment, error) {
	if err := cfg.Arm().Validate(); err != nil {
		return nil, err
	}
	if cfg.Episodes <= 0 {
		return nil, fmt.Errorf("episode count must be positive, got %d", cfg.Episodes)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := NewRegistry()
	if _, err := r.GetController(cfg.Controller.Name, cfg.Controller, 0); err != nil {
		return nil, err
	}
	return &Experiment{cfg: cfg, registry: r, logger: logger}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// NewEngine builds an engine whose target sampling and heading noise are both
// derived from seed.
func (e *Experiment) NewEngine(seed int64) (*arm.Engine, error) {
	n := e.cfg.Noise
	noiseRng := rand.New(rand.NewPCG(uint64(seed), 0x5851f42d4c957f2d))
	return arm.New(e.cfg.Arm(),
		arm.WithSeed(seed),
		arm.WithNoise(noise.OUFactory(n.Mu, n.Theta, n.Sigma, noiseRng)),
		arm.WithLogger(e.logger.With("seed", seed)),
	)
}

// NewRunner wires an engine, the configured controller and the default
// metrics together.
func (e *Experiment) NewRunner(seed int64) (*sim.Runner, error) {
	env, err := e.NewEngine(seed)
	if err != nil {
		return nil, err
	}
	ctrl, err := e.registry.GetController(e.cfg.Controller.Name, e.cfg.Controller, uint64(seed))
	if err != nil {
		return nil, err
	}

	r := sim.New(env, ctrl)
	r.SetLogger(e.logger)
	for _, m := range e.registry.DefaultMetrics() {
		r.AddMetric(m)
	}
	return r, nil
}

// Run plays the configured number of episodes on a single engine, so the
// outcome counters accumulate across them.
func (e *Experiment) Run(ctx context.Context) ([]*sim.Result, error) {
	r, err := e.NewRunner(e.cfg.Seed)
	if err != nil {
		return nil, err
	}
	return r.RunEpisodes(ctx, e.cfg.Episodes)
}

// Ensemble runs n independent engines seeded from the configured seed on.
func (e *Experiment) Ensemble(n int) *sim.Ensemble {
	return sim.NewEnsemble(e.NewRunner, n, e.cfg.Seed)
}
