package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"log/slog"
)

func newTestLogger(buf *bytes.Buffer, format logFormat) *slog.Logger {
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		out:    []io.Writer{buf},
		format: format,
	})
	return slog.New(handler)
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newTestLogger(buf, formatKV).With("component", "dialog")

	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	LogEvent(ctx, log, slog.LevelInfo, "test.event",
		slog.String("status", "ok"),
		slog.String("cause", "unit"),
	)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=dialog", "event=test.event", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "user_id=7") || !strings.Contains(line, "chat_id=9") {
		t.Fatalf("missing context attrs: %s", line)
	}
}

func TestStructuredHandlerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newTestLogger(buf, formatJSON).With("component", "db")

	LogEvent(Background(), log, slog.LevelError, "db.fail",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v (%s)", err, line)
	}
	if decoded["component"] != "db" || decoded["event"] != "db.fail" || decoded["err"] != "boom" {
		t.Fatalf("unexpected payload: %s", line)
	}
	// Schema keys must keep their relative order in the rendered line.
	if strings.Index(line, `"component"`) > strings.Index(line, `"event"`) {
		t.Fatalf("component should precede event: %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		out:    []io.Writer{buf},
		format: formatKV,
	})
	log := slog.New(handler)
	log.Debug("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered, got %q", buf.String())
	}
}

func TestSanitizeLimit(t *testing.T) {
	in := "abc\x00def\nghi"
	out := Sanitize(in)
	if out != "abcdef\nghi" {
		t.Fatalf("Sanitize = %q", out)
	}
	if got := SanitizeLimit("hello world", 5); got != "hello" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
