package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/experiment"
	"github.com/san-kum/armsim/internal/sim"
	"github.com/san-kum/armsim/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted sequence of experiments.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and overrides individual keys of it.
// Zero values leave the preset untouched.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Controller string             `yaml:"controller"`
	Episodes   int                `yaml:"episodes"`
	Seed       int64              `yaml:"seed"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

type StepResult struct {
	Step    string
	Results []*sim.Result
	Summary sim.Summary
	RunIDs  []string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScenario, path)
	}
	return &scenario, nil
}

// Config resolves the step against the preset table.
func (s ScenarioStep) Config() (*config.Config, error) {
	preset := s.Preset
	if preset == "" {
		preset = "default"
	}
	cfg, err := config.GetPreset(preset)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(s.Params); err != nil {
		return nil, err
	}
	if s.Controller != "" {
		cfg.Controller.Name = s.Controller
	}
	if s.Episodes > 0 {
		cfg.Episodes = s.Episodes
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

// RunScenario executes every step in order. Steps marked save are written to
// st, which may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *zap.SugaredLogger) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Infow("running scenario step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: name, Results: res, Summary: sim.Summarize(res)}
		if step.Save && st != nil {
			for j, r := range res {
				id, err := st.Save(storage.RunMetadata{
					Seed:       cfg.Seed,
					Episode:    j,
					Controller: cfg.Controller.Name,
					Config:     cfg.Arm(),
				}, r)
				if err != nil {
					return results, fmt.Errorf("step %d save: %w", i+1, err)
				}
				sr.RunIDs = append(sr.RunIDs, id)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}

// ParameterSweep varies one config key over an evenly spaced range and runs
// an ensemble at each value.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Runs     int
}

type SweepResult struct {
	ParamValue float64
	Summary    sim.Summary
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	vals := make([]float64, s.NumSteps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *zap.SugaredLogger) ([]SweepResult, error) {
	if sweep.Runs <= 0 {
		return nil, fmt.Errorf("sweep runs must be positive, got %d", sweep.Runs)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	vals := sweep.Values()
	results := make([]SweepResult, 0, len(vals))
	for i, v := range vals {
		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		res, err := exp.Ensemble(sweep.Runs).Run(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{ParamValue: v, Summary: sim.Summarize(res)})
		logger.Debugw("sweep point done", "param", sweep.Param, "value", v, "index", i+1, "of", len(vals))
	}
	return results, nil
}
