package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Spec.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Spec.Format)
	}
	if cfg.Spec.CycleDepth != 1 {
		t.Errorf("cycle depth = %d, want 1", cfg.Spec.CycleDepth)
	}
	if cfg.Coverage.Workers != 1 {
		t.Errorf("workers = %d, want 1", cfg.Coverage.Workers)
	}
	if cfg.Reporting.OutputDir != "reports" {
		t.Errorf("output dir = %q", cfg.Reporting.OutputDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.LLM.Client.Provider != "openai" {
		t.Errorf("llm provider = %q", cfg.LLM.Client.Provider)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
spec:
  format: yaml
  cycle_depth: 3
coverage:
  workers: 8
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Spec.Format != "yaml" || cfg.Spec.CycleDepth != 3 {
		t.Errorf("spec = %+v", cfg.Spec)
	}
	if cfg.Coverage.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Coverage.Workers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	// Unset sections still get defaults.
	if cfg.History.Path == "" || cfg.Reporting.OutputDir != "reports" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() on a missing explicit path should fail")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("spec: [not a mapping"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() on malformed yaml should fail")
	}
}
