package arm

import (
	"fmt"

	"go.uber.org/multierr"
)

const (
	DefaultLink1       = 1.0
	DefaultLink2       = 1.0
	DefaultDt          = 0.01
	DefaultTolerance   = 0.1
	DefaultBoundary    = 5
	DefaultTargetSpeed = 1.2
	DefaultMaxSteps    = 1000
)

// Config is fixed for the lifetime of an engine.
type Config struct {
	Link1     float64 `json:"link1"`
	Link2     float64 `json:"link2"`
	Dt        float64 `json:"dt"`
	Tolerance float64 `json:"tolerance"`
	// Boundary is the half width of the square workspace. Targets are
	// sampled on the integer grid inside it.
	Boundary    int     `json:"boundary"`
	TargetSpeed float64 `json:"target_speed"`
	MaxSteps    int     `json:"max_steps"`
}

func DefaultConfig() Config {
	return Config{
		Link1:       DefaultLink1,
		Link2:       DefaultLink2,
		Dt:          DefaultDt,
		Tolerance:   DefaultTolerance,
		Boundary:    DefaultBoundary,
		TargetSpeed: DefaultTargetSpeed,
		MaxSteps:    DefaultMaxSteps,
	}
}

// Validate reports every violated constraint. The returned error matches
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs error
	if c.Link1 <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("link1 length must be positive, got %g", c.Link1))
	}
	if c.Link2 <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("link2 length must be positive, got %g", c.Link2))
	}
	if c.Dt <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.Tolerance <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	if c.Boundary <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("boundary must be positive, got %d", c.Boundary))
	}
	if c.TargetSpeed < 0 {
		errs = multierr.Append(errs, fmt.Errorf("target speed must not be negative, got %g", c.TargetSpeed))
	}
	if c.MaxSteps <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("max steps must be positive, got %d", c.MaxSteps))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// Horizon is the episode time after which a tick counts as a timeout.
func (c Config) Horizon() float64 {
	return c.Dt * float64(c.MaxSteps)
}
