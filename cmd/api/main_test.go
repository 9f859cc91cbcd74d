package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	bytes.Buffer
	syncs int
}

func (b *syncBuffer) Sync() error {
	b.syncs++
	return nil
}

func TestExitCode_FlushesLogger(t *testing.T) {
	buf := &syncBuffer{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), buf, zapcore.InfoLevel)
	lg := zap.New(core)

	if code := exitCode(lg, errors.New("model load failed")); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if buf.syncs == 0 {
		t.Fatalf("logger not synced before exit")
	}
	if !strings.Contains(buf.String(), "model load failed") {
		t.Fatalf("log = %q", buf.String())
	}
}
