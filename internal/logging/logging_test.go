package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevels(t *testing.T) {
	if NewLogger("info").Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("info logger should not log debug")
	}
	if !NewDebugLogger("debug").Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger should log debug")
	}
	if NewNop().Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger should be disabled")
	}
}

func TestConfigBuilds(t *testing.T) {
	if _, err := NewLoggerConfig().Build(); err != nil {
		t.Fatalf("build failed: %v", err)
	}
}

func TestNamedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar().Named("planner")

	logger.Debugw("tree built", "nodes", 12)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "planner" {
		t.Errorf("expected logger name planner, got %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["nodes"] != int64(12) {
		t.Errorf("unexpected fields: %v", entries[0].ContextMap())
	}
}
