package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func initTestLog(t *testing.T) string {
	t.Helper()
	d := t.TempDir()
	SetDir(d)
	if err := Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(Close)
	return d
}

func TestResolveDirFlagWins(t *testing.T) {
	t.Setenv("SCOUT_LOG_PATH", "/env/path")
	got, err := ResolveDir("/flag/path")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/flag/path" {
		t.Errorf("got %q, want flag path", got)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("SCOUT_LOG_PATH", "/env/path")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/env/path" {
		t.Errorf("got %q, want env path", got)
	}
}

func TestResolveDirRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("got %q, want absolute", got)
	}
	if filepath.Base(got) != "logs" {
		t.Errorf("got %q, want .../logs", got)
	}
}

func TestDiagnosticsWritten(t *testing.T) {
	d := initTestLog(t)
	Info("hello_diagnostics")
	APICall("/search", true, 42*time.Millisecond)
	Close()

	data, err := os.ReadFile(filepath.Join(d, "diagnostics_log.txt"))
	if err != nil {
		t.Fatalf("reading diagnostics: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "hello_diagnostics") {
		t.Error("Info line missing")
	}
	if !strings.Contains(out, "api_call") || !strings.Contains(out, "/search") {
		t.Error("APICall line missing")
	}
}

func TestTranscriptWritten(t *testing.T) {
	d := initTestLog(t)
	TranscriptionText("jazz tonight")
	Close()

	data, err := os.ReadFile(filepath.Join(d, "transcribe_log.txt"))
	if err != nil {
		t.Fatalf("reading transcript log: %v", err)
	}
	if !strings.Contains(string(data), "jazz tonight") {
		t.Error("transcript line missing")
	}
}

func TestNoopWhenUninitialized(t *testing.T) {
	Close()
	// Must not panic.
	Info("ignored")
	Warnf("ignored %d", 1)
	Errorf("ignored %d", 2)
	TranscriptionText("ignored")
	SessionEnd(0)
}
