package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" Info ", InfoLevel},
		{"warning", WarnLevel},
		{"WARN", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDomainFields(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value any
	}{
		{Network("bitcoin"), "network", "bitcoin"},
		{Scenario("51"), "scenario", "51"},
		{Nodes(12), "nodes", 12},
		{AnalysisID("abc"), "analysis_id", "abc"},
		{UserID("u1"), "user_id", "u1"},
		{RequestID("r1"), "request_id", "r1"},
		{Latency(2 * time.Second), "latency", "2s"},
		{Error(errors.New("boom")), "error", "boom"},
		{Error(nil), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("field = %+v, want {%s %v}", tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestJSONLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	logger.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	logger.Info("analysis complete", Network("solana"), Nodes(3))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	entry := entries[0]
	if entry.Message != "analysis complete" || entry.Level != "INFO" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Time != "2024-05-01T12:00:00Z" {
		t.Errorf("Time = %q", entry.Time)
	}
	if entry.Fields["network"] != "solana" || entry.Fields["nodes"] != float64(3) {
		t.Errorf("Fields = %v", entry.Fields)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s", entries[0].Level, entries[1].Level)
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Error("SetLevel did not apply")
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("parser"), Network("bitcoin"))

	child.Info("parsed", Count(4))
	parent.Info("plain")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Fields["component"] != "parser" || entries[0].Fields["count"] != float64(4) {
		t.Errorf("child fields = %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("parent should not inherit child fields: %v", entries[1].Fields)
	}
}

func TestJSONLogger_FieldOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(Scenario("none"))
	logger.Info("rerun", Scenario("region"))

	entries := decodeLines(t, &buf)
	if entries[0].Fields["scenario"] != "region" {
		t.Errorf("call-site field should win, got %v", entries[0].Fields["scenario"])
	}
}

func TestJSONLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	child := logger.With(Component("api"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				logger.Info("parent", Int("i", i))
			} else {
				child.Info("child", Int("i", i))
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 50 {
		t.Errorf("got %d entries, want 50", got)
	}
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodelyzer.log")
	logger, err := New(Options{Level: "debug", Output: path, Service: "nodelyzer"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.GetLevel() != DebugLevel {
		t.Errorf("level = %v", logger.GetLevel())
	}

	var buf bytes.Buffer
	logger.writer = &buf
	logger.Debug("hello")
	entries := decodeLines(t, &buf)
	if entries[0].Fields["service"] != "nodelyzer" {
		t.Errorf("service field missing: %v", entries[0].Fields)
	}

	if _, err := New(Options{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")}); err == nil {
		t.Error("expected error for unwritable output")
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(RequestID("req-1"))

	ctx := WithContext(context.Background(), logger)
	FromContext(ctx).Info("handled")

	entries := decodeLines(t, &buf)
	if entries[0].Fields["request_id"] != "req-1" {
		t.Errorf("Fields = %v", entries[0].Fields)
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}

func TestDefaultLogger(t *testing.T) {
	original := DefaultLogger()
	defer SetDefaultLogger(original)

	nop := NewNopLogger()
	SetDefaultLogger(nop)
	if DefaultLogger() != nop {
		t.Error("SetDefaultLogger did not replace the logger")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	op := StartTimer(logger, "parse", Network("ethereum"))
	op.End(Nodes(10))
	op.EndError(errors.New("bad input"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Fields["nodes"] != float64(10) || entries[0].Fields["latency"] == nil {
		t.Errorf("End entry = %+v", entries[0])
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "bad input" {
		t.Errorf("EndError entry = %+v", entries[1])
	}
	if op.Elapsed() < 0 {
		t.Error("Elapsed should not be negative")
	}
}
