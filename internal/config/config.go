package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"swagger-surface/internal/llm"
)

// Config holds the application configuration.
type Config struct {
	Spec      SpecConfig      `yaml:"spec"`
	Coverage  CoverageConfig  `yaml:"coverage"`
	History   HistoryConfig   `yaml:"history"`
	Reporting ReportingConfig `yaml:"reporting"`
	LLM       LLMConfig       `yaml:"llm"`
	LogLevel  string          `yaml:"log_level"`
}

// SpecConfig holds normalizer configuration.
type SpecConfig struct {
	// Format is the default document format (json|yaml).
	Format string `yaml:"format"`
	// CycleDepth bounds how deep cyclic schema references are expanded.
	CycleDepth int `yaml:"cycle_depth"`
}

// CoverageConfig holds log correlation configuration.
type CoverageConfig struct {
	Workers int `yaml:"workers"`
}

// HistoryConfig holds the snapshot store location.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ReportingConfig holds report output configuration.
type ReportingConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// LLMConfig enables optional LLM-assisted example payloads.
type LLMConfig struct {
	Enabled bool       `yaml:"enabled"`
	Client  llm.Config `yaml:"client"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return applyDefaults(&Config{})
}

// Load reads the configuration file at path, falling back to defaults
// when path is empty and no config/config.yaml exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = filepath.Join("config", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyDefaults(&cfg), nil
}

func applyDefaults(cfg *Config) *Config {
	if cfg.Spec.Format == "" {
		cfg.Spec.Format = "json"
	}
	if cfg.Spec.CycleDepth == 0 {
		cfg.Spec.CycleDepth = 1
	}
	if cfg.Coverage.Workers == 0 {
		cfg.Coverage.Workers = 1
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join("history", "snapshots.db")
	}
	if cfg.Reporting.OutputDir == "" {
		cfg.Reporting.OutputDir = "reports"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LLM.Client.Provider == "" {
		cfg.LLM.Client = *llm.NewDefaultConfig()
	}
	// The API key always comes from the environment when set.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.Client.APIKey = key
	}
	return cfg
}
