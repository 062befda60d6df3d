package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"yieldmarket/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"":       zapcore.InfoLevel,
		"loud":   zapcore.InfoLevel,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Fatalf("level(%q)=%v want=%v", raw, got, want)
		}
	}
}

func TestBuildConfigEncoding(t *testing.T) {
	if got := buildConfig(config.LogConfig{Encoding: "console"}).Encoding; got != "console" {
		t.Fatalf("encoding=%q want=console", got)
	}
	if got := buildConfig(config.LogConfig{Encoding: "xml"}).Encoding; got != "json" {
		t.Fatalf("encoding=%q want=json", got)
	}
	zc := buildConfig(config.LogConfig{Sampling: true})
	if zc.Sampling == nil || zc.Sampling.Initial != 100 {
		t.Fatalf("sampling=%+v", zc.Sampling)
	}
}

func TestNew(t *testing.T) {
	l, err := New(config.LogConfig{Level: "info", Encoding: "json"})
	if err != nil {
		t.Fatalf("new err=%v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("unexpected level gating")
	}
}
