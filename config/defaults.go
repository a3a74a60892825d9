package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost is the interface the listener binds to.
	DefaultHost = "localhost"

	// DefaultPort is the TCP port the listener binds to.
	DefaultPort = 30222

	// DefaultNetwork restricts resolution to IPv4.
	DefaultNetwork = "tcp4"

	// DefaultPollTimeout bounds every wait in the control loop.
	DefaultPollTimeout = 500 * time.Millisecond

	// DefaultVerbosity prints connection and read events but not the
	// per-iteration poll timeouts.
	DefaultVerbosity = 1
)
