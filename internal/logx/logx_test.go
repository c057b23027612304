package logx

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestComponentDebugSwitch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	quiet := Component(base, "record", false)
	quiet.Debug("hidden")
	quiet.Info("shown")

	loud := Component(base, "hotkey", true)
	loud.Debug("visible")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].LoggerName != "record" || entries[0].Message != "shown" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].LoggerName != "hotkey" || entries[1].Level != zapcore.DebugLevel {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestComponentNilBase(t *testing.T) {
	l := Component(nil, "x", true)
	l.Info("no panic")
	OrNop(nil).Debug("no panic")
}
