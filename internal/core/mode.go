// Package core is the orchestration layer.  It composes the listener,
// the session and a capability into a complete operational mode and
// provides a builder that derives that mode from a Config.
//
// Architecture layers (bottom → top):
//
//	netpoll  →  listener / session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of pollsrv.  Each mode
// owns its full lifecycle from socket setup to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
