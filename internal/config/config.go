// Package config loads the surgehost.toml manifest that configures the
// diagnostics pipeline. Every key is optional; absent keys fall back to
// defaults, and a missing manifest yields the default configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest searched for upward from the working directory.
const FileName = "surgehost.toml"

// Config is the full manifest.
type Config struct {
	Analyzer    AnalyzerConfig    `toml:"analyzer"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// AnalyzerConfig selects the external analyzer.
type AnalyzerConfig struct {
	// Path is the analyzer executable; a bare name resolves via PATH.
	Path string `toml:"path"`
	// MaxDiagnostics caps the analyzer's reported diagnostics.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// DiagnosticsConfig tunes the pipeline.
type DiagnosticsConfig struct {
	// DebounceMS is the quiet interval in milliseconds between a change
	// burst and the analysis it triggers.
	DebounceMS int `toml:"debounce_ms"`
	// ScratchDir overrides the directory for buffer snapshots.
	ScratchDir string `toml:"scratch_dir"`
}

// Debounce returns the configured quiet interval.
func (d DiagnosticsConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMS) * time.Millisecond
}

// Default returns the configuration used when no manifest is found.
func Default() Config {
	return Config{
		Analyzer:    AnalyzerConfig{Path: "surge", MaxDiagnostics: 100},
		Diagnostics: DiagnosticsConfig{DebounceMS: 500},
	}
}

// Find walks upward from startDir looking for the manifest.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load discovers and parses the manifest for startDir. The second return
// value is the manifest path, empty when defaults were used.
func Load(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile parses the manifest at path, filling defaults for absent keys.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Analyzer.Path == "" {
		cfg.Analyzer.Path = Default().Analyzer.Path
	}
	if cfg.Analyzer.MaxDiagnostics <= 0 {
		cfg.Analyzer.MaxDiagnostics = Default().Analyzer.MaxDiagnostics
	}
	if cfg.Diagnostics.DebounceMS <= 0 {
		cfg.Diagnostics.DebounceMS = Default().Diagnostics.DebounceMS
	}
	return cfg, nil
}
