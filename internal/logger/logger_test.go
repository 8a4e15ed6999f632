package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewProvidesJSONLogger(t *testing.T) {
	l := New()
	if l == nil {
		t.Fatal("expected logger, got nil")
	}

	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected info level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("did not expect debug level to be enabled")
	}

	if _, ok := l.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("expected JSON handler, got %T", l.Handler())
	}
}

func TestNewWithLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}

	for name, level := range cases {
		l := NewWithLevel(&bytes.Buffer{}, name)
		if !l.Enabled(context.Background(), level) {
			t.Errorf("%s: expected %v enabled", name, level)
		}
		if l.Enabled(context.Background(), level-1) {
			t.Errorf("%s: did not expect %v enabled", name, level-1)
		}
	}
}

func TestNewWithLevelWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	NewWithLevel(&buf, "info").Info("order priced", "order_id", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "order priced" {
		t.Errorf("unexpected message: %v", entry["msg"])
	}
	if entry["order_id"] != float64(7) {
		t.Errorf("unexpected order_id: %v", entry["order_id"])
	}
}
