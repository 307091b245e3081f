package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithContext_AddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(New(&buf, "debug"))
	defer SetDefault(prev)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, ServiceKey, "accounts")
	ctx = WithAccountID(ctx, "acc-9")

	InfoContext(ctx, "hello", "k", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{
		"msg":        "hello",
		"request_id": "req-1",
		"service":    "accounts",
		"account_id": "acc-9",
		"k":          "v",
	} {
		if line[key] != want {
			t.Fatalf("expected %s=%q, got %v", key, want, line[key])
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(New(&buf, "warn"))
	defer SetDefault(prev)

	Info("dropped")
	Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info/debug to be filtered, got %q", buf.String())
	}

	Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn line")
	}
}
