package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })
	path := filepath.Join(t.TempDir(), "phytoscan.log")

	if err := Init(Options{File: path, Debug: true}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Logger.Debugw("upload started", "generation", 3)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "upload started") || !strings.Contains(string(data), "generation") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestInitWithoutSinkIsSilent(t *testing.T) {
	if err := Init(Options{Debug: true}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if Logger.Desugar().Core().Enabled(-1) {
		t.Fatal("expected a no-op logger")
	}
}

func TestInfoLevelHidesDebug(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })
	path := filepath.Join(t.TempDir(), "phytoscan.log")
	if err := Init(Options{File: path}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Logger.Debugw("hidden")
	Logger.Infow("visible")
	Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "visible") {
		t.Fatalf("unexpected log contents: %q", data)
	}
}
