package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/taskgrid/internal/task"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TaskfilePath string // file or directory of .hcl taskfiles

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Parallel runs the requested targets concurrently.
	Parallel bool
	// Concurrency caps goroutines per parallel batch. Zero means unbounded.
	Concurrency int
	// Skip lists tasks that are treated as disabled for this run.
	Skip []string
	// Targets are the task expressions to generate. Empty means "default".
	Targets []string
	// List prints the scope tree instead of running.
	List bool
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TaskfilePath == "" {
		return nil, errors.New("TaskfilePath is a required configuration field and cannot be empty")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q, expected one of %v", cfg.LogLevel, logLevels)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format %q, expected one of %v", cfg.LogFormat, logFormats)
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

// options returns the call-time task options of a run.
func (c *Config) options() task.Options {
	opts := task.Options{}
	if c.Parallel {
		opts[task.KeyParallel] = true
	}
	if c.Concurrency > 0 {
		opts[task.KeyConcurrency] = c.Concurrency
	}
	if len(c.Skip) > 0 {
		opts[task.KeySkip] = slices.Clone(c.Skip)
	}
	return opts
}
