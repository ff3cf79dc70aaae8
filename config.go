// config.go - JSON settings shared by the CLI and embedding hosts

package midisynth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Config is the on-disk configuration. Command line flags override it.
type Config struct {
	SoundFont string `json:"soundFont,omitempty"`
	Backend   string `json:"backend,omitempty"`
	OutputDir string `json:"outputDir,omitempty"`
	Jobs      int    `json:"jobs,omitempty"`
}

// DefaultConfig renders with one job per CPU and plays nothing.
func DefaultConfig() *Config {
	return &Config{
		Backend: SinkBackendName(SINK_BACKEND_NONE),
		Jobs:    runtime.NumCPU(),
	}
}

// DefaultConfigPath returns ~/.config/midisynth/config.json.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midisynth", "config.json"), nil
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate is the startup check: the backend must be one compiled into
// this binary and there must be at least one render job.
func (c *Config) Validate() error {
	if _, err := ParseSinkBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalidConfig, c.Jobs)
	}
	return nil
}

// SinkBackend returns the parsed backend; call Validate first.
func (c *Config) SinkBackend() int {
	b, _ := ParseSinkBackend(c.Backend)
	return b
}
