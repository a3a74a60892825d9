package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfigFile names the variable holding the default config file path.
const EnvConfigFile = "POLLSRV_CONFIG"

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the POLLSRV_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only set,
// parseable env vars override the existing value; zero is a valid port
// (any free port) and a valid verbosity (quiet).  This should be called BEFORE
// CLI flags are applied so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("POLLSRV_HOST"); v != "" {
		cfg.Host = v
	}
	if v, ok := envInt("POLLSRV_PORT"); ok && v >= 0 {
		cfg.Port = v
	}
	if v := os.Getenv("POLLSRV_NETWORK"); v != "" {
		cfg.Network = strings.ToLower(v)
	}
	if v, ok := envInt("POLLSRV_POLL_TIMEOUT"); ok && v > 0 {
		cfg.PollTimeout = millisDuration(v)
	}

	// Output
	if v, ok := envInt("POLLSRV_VERBOSE"); ok && v >= 0 {
		cfg.Verbose = v
	}
	if envBool("POLLSRV_NO_COLOR") || os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
}

// Load builds a Config from defaults, the ini file at path (skipped
// when path is empty) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	LoadFromEnv(cfg)
	return cfg, nil
}

// ── helpers ──────────────────────────────────────────────────────────

// envInt reports the integer value of key and whether it was set to
// one.
func envInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func millisDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
