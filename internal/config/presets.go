package config

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"precise": func() *Config {
		c := DefaultConfig()
		c.Episode.Tolerance = 0.01
		return c
	}(),
	"arena": func() *Config {
		c := DefaultConfig()
		c.Episode.Boundary = 10
		c.Episode.MaxSteps = 3000
		return c
	}(),
	"calm": func() *Config {
		c := DefaultConfig()
		c.Noise.Sigma = 0
		return c
	}(),
	"sprint": func() *Config {
		c := DefaultConfig()
		c.Episode.TargetSpeed = 2.5
		return c
	}(),
}

func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
