package experiment

import (
	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/controllers"
	"github.com/san-kum/armsim/internal/metrics"
	"github.com/san-kum/armsim/internal/sim"
)

type Registry struct {
	controllers *controllers.Registry
}

func NewRegistry() *Registry {
	return &Registry{controllers: controllers.NewRegistry()}
}

func (r *Registry) GetController(name string, c config.ControllerConfig, seed uint64) (sim.Controller, error) {
	return r.controllers.Get(name, controllers.Params{
		Kv:   c.Kv,
		Kb:   c.Kb,
		K1:   c.K1,
		K2:   c.K2,
		Kp:   c.Kp,
		Ki:   c.Ki,
		Kd:   c.Kd,
		Seed: seed,
	})
}

func (r *Registry) ListControllers() []string {
	return r.controllers.List()
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewReturn(),
		metrics.NewMinDistance(),
		metrics.NewControlEffort(),
		metrics.NewSteps(),
	}
}
