package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownKey = errors.New("config: unknown key")

// setters addresses numeric fields by their yaml key, section qualified
// where a bare key would be ambiguous.
var setters = map[string]func(c *Config, v float64){
	"link1":        func(c *Config, v float64) { c.Arm.Link1 = v },
	"link2":        func(c *Config, v float64) { c.Arm.Link2 = v },
	"dt":           func(c *Config, v float64) { c.Episode.Dt = v },
	"tolerance":    func(c *Config, v float64) { c.Episode.Tolerance = v },
	"boundary":     func(c *Config, v float64) { c.Episode.Boundary = int(math.Round(v)) },
	"target_speed": func(c *Config, v float64) { c.Episode.TargetSpeed = v },
	"max_steps":    func(c *Config, v float64) { c.Episode.MaxSteps = int(math.Round(v)) },
	"noise.mu":     func(c *Config, v float64) { c.Noise.Mu = v },
	"noise.theta":  func(c *Config, v float64) { c.Noise.Theta = v },
	"noise.sigma":  func(c *Config, v float64) { c.Noise.Sigma = v },
	"kv":           func(c *Config, v float64) { c.Controller.Kv = v },
	"kb":           func(c *Config, v float64) { c.Controller.Kb = v },
	"k1":           func(c *Config, v float64) { c.Controller.K1 = v },
	"k2":           func(c *Config, v float64) { c.Controller.K2 = v },
	"kp":           func(c *Config, v float64) { c.Controller.Kp = v },
	"ki":           func(c *Config, v float64) { c.Controller.Ki = v },
	"kd":           func(c *Config, v float64) { c.Controller.Kd = v },
	"episodes":     func(c *Config, v float64) { c.Episodes = int(math.Round(v)) },
	"seed":         func(c *Config, v float64) { c.Seed = int64(math.Round(v)) },
}

// Set assigns a numeric field by key. Integer fields are rounded.
func (c *Config) Set(key string, v float64) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	set(c, v)
	return nil
}

// Apply sets every key in values, stopping at the first unknown one.
func (c *Config) Apply(values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
