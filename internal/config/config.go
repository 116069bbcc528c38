// Package config loads the optional battwhy config file. Every field has a
// default; a missing file is not an error at the call site, only an
// unreadable or invalid one is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	minDurationSeconds = 1
	maxDurationSeconds = 3600
	minTopProcesses    = 1
	maxTopProcesses    = 500
)

type Config struct {
	Sampling SamplingConfig `toml:"sampling"`
	Output   OutputConfig   `toml:"output"`
	Storage  StorageConfig  `toml:"storage"`
}

type SamplingConfig struct {
	DurationSeconds int `toml:"duration_seconds"`
	TopProcesses    int `toml:"top_processes"`
}

type OutputConfig struct {
	Mode  string `toml:"mode"` // "text" or "json"
	Color bool   `toml:"color"`
}

type StorageConfig struct {
	// HistoryDBPath enables run history when non-empty.
	HistoryDBPath string `toml:"history_db_path"`
}

func DefaultConfig() *Config {
	return &Config{
		Sampling: SamplingConfig{
			DurationSeconds: 2,
			TopProcesses:    5,
		},
		Output: OutputConfig{
			Mode:  "text",
			Color: true,
		},
		Storage: StorageConfig{
			HistoryDBPath: "",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the
// result. Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	if err := validateRange("sampling.duration_seconds", sanitized.Sampling.DurationSeconds, minDurationSeconds, maxDurationSeconds); err != nil {
		return nil, err
	}
	if err := validateRange("sampling.top_processes", sanitized.Sampling.TopProcesses, minTopProcesses, maxTopProcesses); err != nil {
		return nil, err
	}

	switch sanitized.Output.Mode {
	case "text", "json":
	default:
		return nil, fmt.Errorf("output.mode must be \"text\" or \"json\", got %q", sanitized.Output.Mode)
	}

	var err error
	sanitized.Storage.HistoryDBPath, err = sanitizeOptionalPath("storage.history_db_path", sanitized.Storage.HistoryDBPath)
	if err != nil {
		return nil, err
	}

	return &sanitized, nil
}

// sanitizeOptionalPath accepts the empty string (feature disabled) but
// requires any configured path to be absolute.
func sanitizeOptionalPath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
