package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerConfig(t *testing.T) {
	cfg := NewLoggerConfig()
	if cfg.Encoding != "console" {
		t.Errorf("expected console encoding, got %s", cfg.Encoding)
	}
	if cfg.Level.Level() != zap.InfoLevel {
		t.Errorf("expected info level, got %s", cfg.Level.Level())
	}
	if !cfg.DisableStacktrace {
		t.Error("stacktraces should be disabled")
	}
}

func TestNew(t *testing.T) {
	logger, err := New("test", true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("debug logger does not log at debug level")
	}

	logger, err = New("test", false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger.Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("default logger should not log at debug level")
	}
}

func TestNop(t *testing.T) {
	Nop().Infow("discarded", "k", 1)
}
