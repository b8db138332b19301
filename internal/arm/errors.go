package arm

import "errors"

var (
	// ErrInvalidConfig indicates a configuration the engine cannot run with.
	ErrInvalidConfig = errors.New("arm: invalid configuration")
)
