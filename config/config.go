// Package config defines the runtime configuration for pollsrv and the
// layers that populate it: defaults, an optional ini file, environment
// variables and, in cmd, command-line flags.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	srverr "pollsrv/internal/errors"
)

// Config holds every tuneable for the listener and its control loop.
type Config struct {
	// ── Bind address ─────────────────────────────────────────────────
	Host    string // interface to bind; empty means the wildcard address
	Port    int    // 0 lets the kernel pick
	Network string // "tcp4" or "tcp6"

	// ── Control loop ─────────────────────────────────────────────────
	PollTimeout time.Duration

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	NoColor bool

	// ConfigFile is the ini file the values were loaded from, if any.
	ConfigFile string
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		Network:     DefaultNetwork,
		PollTimeout: DefaultPollTimeout,
		Verbose:     DefaultVerbosity,
	}
}

// Address returns the bind address as "host:port".
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParsePort accepts a decimal port number in 0-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 0-65535", port)
	}
	return port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &srverr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 0-65535",
			Hint:    "use a port between 1 and 65535, or 0 for any free port",
		}
	}

	switch c.Network {
	case "tcp4", "tcp6":
	default:
		return &srverr.ConfigError{
			Field:   "network",
			Value:   c.Network,
			Message: "unsupported network",
			Hint:    "use -4 (tcp4) or -6 (tcp6)",
		}
	}

	if c.PollTimeout <= 0 {
		return &srverr.ConfigError{
			Field:   "poll-timeout",
			Value:   c.PollTimeout.Milliseconds(),
			Message: "must be positive",
			Hint:    fmt.Sprintf("the default is %d ms", DefaultPollTimeout.Milliseconds()),
		}
	}

	if c.Verbose < 0 {
		return &srverr.ConfigError{
			Field:   "verbose",
			Value:   c.Verbose,
			Message: "must not be negative",
		}
	}

	return nil
}

// String renders the effective configuration, one setting per line.
func (c *Config) String() string {
	file := c.ConfigFile
	if file == "" {
		file = "(none)"
	}
	return fmt.Sprintf(
		"address:      %s\nnetwork:      %s\npoll-timeout: %s\nverbose:      %d\nno-color:     %t\nconfig:       %s",
		c.Address(), c.Network, c.PollTimeout, c.Verbose, c.NoColor, file)
}
