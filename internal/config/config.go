package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/noise"
)

const (
	DefaultController = "tracking"
	DefaultEpisodes   = 1
	DefaultKv         = 1.0
	DefaultKb         = 1.0
	DefaultK1         = 1.0
	DefaultK2         = 1.0
	DefaultKp         = 1.0
	DefaultKi         = 0.0
	DefaultKd         = 0.05
)

type Config struct {
	Arm        ArmConfig        `yaml:"arm"`
	Episode    EpisodeConfig    `yaml:"episode"`
	Noise      NoiseConfig      `yaml:"noise"`
	Controller ControllerConfig `yaml:"controller"`
	Episodes   int              `yaml:"episodes"`
	Seed       int64            `yaml:"seed"`
}

type ArmConfig struct {
	Link1 float64 `yaml:"link1"`
	Link2 float64 `yaml:"link2"`
}

type EpisodeConfig struct {
	Dt          float64 `yaml:"dt"`
	Tolerance   float64 `yaml:"tolerance"`
	Boundary    int     `yaml:"boundary"`
	TargetSpeed float64 `yaml:"target_speed"`
	MaxSteps    int     `yaml:"max_steps"`
}

// NoiseConfig parameterises the Ornstein-Uhlenbeck heading noise.
type NoiseConfig struct {
	Mu    float64 `yaml:"mu"`
	Theta float64 `yaml:"theta"`
	Sigma float64 `yaml:"sigma"`
}

type ControllerConfig struct {
	Name string  `yaml:"name"`
	Kv   float64 `yaml:"kv"`
	Kb   float64 `yaml:"kb"`
	K1   float64 `yaml:"k1"`
	K2   float64 `yaml:"k2"`
	Kp   float64 `yaml:"kp"`
	Ki   float64 `yaml:"ki"`
	Kd   float64 `yaml:"kd"`
}

func DefaultConfig() *Config {
	return &Config{
		Arm: ArmConfig{
			Link1: arm.DefaultLink1,
			Link2: arm.DefaultLink2,
		},
		Episode: EpisodeConfig{
			Dt:          arm.DefaultDt,
			Tolerance:   arm.DefaultTolerance,
			Boundary:    arm.DefaultBoundary,
			TargetSpeed: arm.DefaultTargetSpeed,
			MaxSteps:    arm.DefaultMaxSteps,
		},
		Noise: NoiseConfig{
			Mu:    noise.DefaultMu,
			Theta: noise.DefaultTheta,
			Sigma: noise.DefaultSigma,
		},
		Controller: ControllerConfig{
			Name: DefaultController,
			Kv:   DefaultKv,
			Kb:   DefaultKb,
			K1:   DefaultK1,
			K2:   DefaultK2,
			Kp:   DefaultKp,
			Ki:   DefaultKi,
			Kd:   DefaultKd,
		},
		Episodes: DefaultEpisodes,
	}
}

// Load reads a yaml file on top of DefaultConfig, so missing keys keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Arm converts the file layout into the engine configuration.
func (c *Config) Arm() arm.Config {
	return arm.Config{
		Link1:       c.Arm.Link1,
		Link2:       c.Arm.Link2,
		Dt:          c.Episode.Dt,
		Tolerance:   c.Episode.Tolerance,
		Boundary:    c.Episode.Boundary,
		TargetSpeed: c.Episode.TargetSpeed,
		MaxSteps:    c.Episode.MaxSteps,
	}
}

// Clone returns an independent copy; Config holds no references.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
