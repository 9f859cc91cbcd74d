package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	cases := []struct {
		mode, level string
		debug       bool
	}{
		{"development", "debug", true},
		{"production", "", false},
		{"production", "not-a-level", false},
		{"prod", "warn", false},
	}
	for _, tc := range cases {
		l, err := New(tc.mode, tc.level)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tc.mode, tc.level, err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("New(%q, %q) debug enabled = %v, want %v", tc.mode, tc.level, got, tc.debug)
		}
	}
}
