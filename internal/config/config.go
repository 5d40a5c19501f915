// Package config loads the worker configuration: which workspaces to
// operate on, fetch shaping, retry bounds, and the optional telemetry
// surfaces (Prometheus endpoint, SQLite journal, maintenance schedule).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gitdriver/internal/errors"
)

// Config is the top-level worker configuration.
type Config struct {
	// Workspaces are the repository working directories this worker manages.
	Workspaces []Workspace `yaml:"workspaces"`
	Fetch      FetchConfig `yaml:"fetch,omitempty"`
	Retry      RetryConfig `yaml:"retry,omitempty"`
	Telemetry  Telemetry   `yaml:"telemetry,omitempty"`
	Maintain   Maintain    `yaml:"maintenance,omitempty"`

	// Env holds session-level environment overrides passed to every git
	// invocation. Values here win over the ambient process environment.
	Env map[string]string `yaml:"env,omitempty"`
}

// Workspace is one managed repository directory.
type Workspace struct {
	Path   string `yaml:"path"`
	Remote string `yaml:"remote,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

// FetchConfig shapes fetch invocations.
type FetchConfig struct {
	Depth            int  `yaml:"depth,omitempty"`
	DisablePruneTags bool `yaml:"disable_prune_tags,omitempty"`
	Quiet            bool `yaml:"quiet,omitempty"`
	LFS              bool `yaml:"lfs,omitempty"`
}

// RetryConfig bounds the fetch retry loop.
type RetryConfig struct {
	MinDelay    string `yaml:"min_delay,omitempty"`
	MaxDelay    string `yaml:"max_delay,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
}

// MinDelayDuration parses MinDelay; zero on absence or parse failure.
func (r RetryConfig) MinDelayDuration() time.Duration {
	d, _ := time.ParseDuration(r.MinDelay)
	return d
}

// MaxDelayDuration parses MaxDelay; zero on absence or parse failure.
func (r RetryConfig) MaxDelayDuration() time.Duration {
	d, _ := time.ParseDuration(r.MaxDelay)
	return d
}

// Telemetry configures the optional sinks.
type Telemetry struct {
	// MetricsListen is the address for the Prometheus endpoint ("" disables it).
	MetricsListen string `yaml:"metrics_listen,omitempty"`
	// JournalPath is the SQLite operation log path ("" disables it).
	JournalPath string `yaml:"journal_path,omitempty"`
}

// Maintain configures the periodic gc schedule.
type Maintain struct {
	Interval string `yaml:"interval,omitempty"`
}

// IntervalDuration parses Interval, defaulting to 24h.
func (m Maintain) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(m.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Load reads and validates a configuration file, applying env overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path, err)
		}
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to read configuration")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "failed to parse configuration")
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces structural invariants.
func (c *Config) Validate() error {
	for i, w := range c.Workspaces {
		if w.Path == "" {
			return errors.ValidationFailed("workspaces", "workspace path must not be empty").
				WithContext("index", i)
		}
	}
	if c.Fetch.Depth < 0 {
		return errors.ValidationFailed("fetch.depth", "depth cannot be negative")
	}
	if c.Retry.MaxAttempts < 0 {
		return errors.ValidationFailed("retry.max_attempts", "cannot be negative")
	}
	return nil
}
