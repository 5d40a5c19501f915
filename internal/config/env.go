package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env / .env.local into the process environment. Existing
// variables are not overwritten. Missing files are not an error.
func LoadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// applyEnvOverrides lets a few operational knobs be set without editing the
// config file, for container deployments.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GITDRIVER_METRICS_LISTEN"); v != "" {
		c.Telemetry.MetricsListen = v
	}
	if v := os.Getenv("GITDRIVER_JOURNAL_PATH"); v != "" {
		c.Telemetry.JournalPath = v
	}
	if v := os.Getenv("GITDRIVER_FETCH_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Fetch.Depth = n
		}
	}
	if v := os.Getenv("GITDRIVER_QUIET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Fetch.Quiet = b
		}
	}
}
