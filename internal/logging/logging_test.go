package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskcal.log")
	var console bytes.Buffer
	log, err := New(Options{File: path, Level: "debug", Console: &console})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Debug("tasks loaded", zap.Int("count", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"tasks loaded"`) || !strings.Contains(string(data), `"count":3`) {
		t.Fatalf("unexpected file output: %s", data)
	}
	if !strings.Contains(console.String(), "tasks loaded") {
		t.Fatalf("unexpected console output: %q", console.String())
	}
}

func TestLevelFilters(t *testing.T) {
	var console bytes.Buffer
	log, err := New(Options{Level: "warn", Console: &console})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "shown") {
		t.Fatalf("unexpected output: %q", console.String())
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestNoSinkIsNop(t *testing.T) {
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("dropped")
}
