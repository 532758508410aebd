package driver_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bf/compiler-go/pkg/driver"
	"bf/compiler-go/pkg/optimizer"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, driver.ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "opt_level: 1\nmax_steps: 500\nmode: c\noutdir: build\nlog:\n  level: debug\n")
	cfg, err := driver.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OptLevel != optimizer.LevelPeephole {
		t.Errorf("OptLevel = %d, want 1", cfg.OptLevel)
	}
	if cfg.MaxSteps != 500 {
		t.Errorf("MaxSteps = %d, want 500", cfg.MaxSteps)
	}
	if cfg.Mode != "c" {
		t.Errorf("Mode = %q, want c", cfg.Mode)
	}
	if cfg.OutDir != "build" {
		t.Errorf("OutDir = %q, want build", cfg.OutDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigEmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := driver.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := driver.DefaultConfig()
	if cfg.OptLevel != want.OptLevel || cfg.MaxSteps != want.MaxSteps || cfg.Mode != want.Mode {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "optimization: 9\n")
	if _, err := driver.LoadConfig(path); err == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestLoadConfigAggregatesIssues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "opt_level: 9\nmax_steps: -5\nmode: x\n")
	_, err := driver.LoadConfig(path)
	var verr *driver.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 3 {
		t.Fatalf("Issues = %v, want 3 entries", verr.Issues)
	}
	if !strings.Contains(verr.Error(), "opt_level") {
		t.Fatalf("message does not name the field: %v", verr)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "mode: i\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := driver.FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if filepath.Dir(found) != root {
		t.Fatalf("found %s, want file under %s", found, root)
	}
}

func TestFindConfigNotFound(t *testing.T) {
	_, err := driver.FindConfig(t.TempDir())
	if !errors.Is(err, driver.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}
