package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"nope":    Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Fatalf("expected json format")
	}
	if ParseFormat("") != FormatText {
		t.Fatalf("expected text format by default")
	}
}

func TestZapLogger_WithAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZap(zap.New(core)).With(map[string]any{"cycle_id": "c-1"})

	l.Warn("reconciled", map[string]any{
		"discarded": 2,
		"err":       errors.New("boom"),
		" ":         "ignored",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["cycle_id"] != "c-1" {
		t.Fatalf("expected cycle_id field, got %#v", ctx)
	}
	if ctx["discarded"] != int64(2) {
		t.Fatalf("expected discarded=2, got %#v", ctx["discarded"])
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected err=boom, got %#v", ctx["err"])
	}
	if _, ok := ctx[" "]; ok {
		t.Fatalf("blank keys must be dropped")
	}
}
