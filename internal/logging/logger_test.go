package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStructuredLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("flightlog", "test", InfoLevel)
	l.SetOutput(&buf)

	ctx := WithRunID(context.Background(), "run-1")
	l.Debug(ctx, "hidden", nil)
	l.Info(ctx, "analysis complete", Fields{"rows": 3})
	l.Error(ctx, "analysis failed", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (debug filtered), got %d: %q", len(lines), buf.String())
	}
	var info LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("unmarshal info entry: %v", err)
	}
	if info.Level != "INFO" || info.RunID != "run-1" || info.Fields["rows"] != 3.0 {
		t.Fatalf("unexpected info entry %+v", info)
	}
	var errEntry LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &errEntry); err != nil {
		t.Fatalf("unmarshal error entry: %v", err)
	}
	if errEntry.Error != "boom" || errEntry.File == "" {
		t.Fatalf("error entry missing details %+v", errEntry)
	}
}

func TestWithFieldsMerges(t *testing.T) {
	var buf bytes.Buffer
	l := NewStructuredLogger("flightlog", "test", DebugLevel)
	l.SetOutput(&buf)

	l.WithFields(Fields{"component": "api", "rows": 1}).Info(context.Background(), "hello", Fields{"rows": 2})
	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.Fields["component"] != "api" || entry.Fields["rows"] != 2.0 {
		t.Fatalf("unexpected merged fields %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{"debug": DebugLevel, " WARN ": WarnLevel, "error": ErrorLevel, "": InfoLevel, "loud": InfoLevel}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}
