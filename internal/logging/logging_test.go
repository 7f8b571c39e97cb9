package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
	l.Debug("logger ready")
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "console"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestMust(t *testing.T) {
	if l := Must("info", ""); !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Must(info) built the wrong level")
	}

	defer func() {
		if recover() == nil {
			t.Error("Must did not panic on an unknown level")
		}
	}()
	Must("loud", "console")
}
