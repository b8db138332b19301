package controllers

import (
	"fmt"
	"sort"

	"github.com/san-kum/armsim/internal/sim"
)

// Params carries the tunables a controller constructor may read.
type Params struct {
	Kv, Kb, K1, K2 float64
	Kp, Ki, Kd     float64
	Seed           uint64
}

type Registry struct {
	controllers map[string]func(Params) sim.Controller
}

func NewRegistry() *Registry {
	r := &Registry{controllers: make(map[string]func(Params) sim.Controller)}

	r.controllers["none"] = func(Params) sim.Controller { return NewNone() }
	r.controllers["tracking"] = func(p Params) sim.Controller {
		return NewTracking(p.Kv, p.Kb, p.K1, p.K2)
	}
	r.controllers["pid"] = func(p Params) sim.Controller { return NewPID(p.Kp, p.Ki, p.Kd) }
	r.controllers["random"] = func(p Params) sim.Controller { return NewRandom(p.Seed) }

	return r
}

func (r *Registry) Get(name string, p Params) (sim.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
