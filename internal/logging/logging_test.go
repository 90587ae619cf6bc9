package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New().FromWriter(&buf).Level("debug").Make()
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	l.Info("patch committed", "version", 3, "section", "infiltrationAndVentilation/ductwork", "err", errors.New("boom"))
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["message"] != "patch committed" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["version"] != float64(3) || entry["err"] != "boom" {
		t.Fatalf("missing fields %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected timestamp")
	}
}

func TestLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New().FromWriter(&buf).Level("warn").Make()
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "odd")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"extra":"odd"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLoggerFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dwellingcore.log")
	l, err := New().FromPath(path).Make()
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	l.Error("persist failed")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(raw), "persist failed") {
		t.Fatalf("expected log file content, got %q err=%v", raw, err)
	}
}

func TestMakeRejectsUnknownLevel(t *testing.T) {
	if _, err := New().Level("loud").Make(); err == nil {
		t.Fatalf("expected level error")
	}
}
