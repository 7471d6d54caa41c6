package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"loud":    log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	if ParseFormatter("json") != log.JSONFormatter {
		t.Error("json")
	}
	if ParseFormatter("logfmt") != log.LogfmtFormatter {
		t.Error("logfmt")
	}
	if ParseFormatter("fancy") != log.TextFormatter {
		t.Error("fallback")
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Options{Level: "warn", Format: "logfmt"})
	l.Info("hidden")
	l.Warn("save failed", "slot", "todos-v1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %q", out)
	}
	if !strings.Contains(out, "slot=todos-v1") {
		t.Errorf("missing field: %q", out)
	}
}

func TestNewWritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "tasklist.log")
	l, closeFn, err := New(Options{Level: "debug", File: p})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hello", "n", 1)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Errorf("log file = %q", b)
	}
}
