// Package errors provides domain-specific error types for pollsrv.
//
// These types carry structured context (operation, address, transience)
// that helps the control loop decide whether a failure should be retried
// on the next poll, should end the current session, or should stop the
// process.
package errors

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrListenerClosed = errors.New("listener is closed")
	ErrNoAddress      = errors.New("no usable address")
)

// ── Structured error types ───────────────────────────────────────────

// SocketError represents a runtime failure on the listening socket or
// on the session socket.  Runtime failures never stop the process.
type SocketError struct {
	Op        string // "poll", "accept", "read", "shutdown", "close"
	Addr      string // local or peer address involved
	Err       error  // underlying errno
	Transient bool   // retry on the next loop iteration
}

func (e *SocketError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Transient {
		s += " (transient)"
	}
	return s
}

func (e *SocketError) Unwrap() error { return e.Err }

// StartupError is a failure while establishing the listening socket or
// configuring an accepted connection.  It is always fatal.
type StartupError struct {
	Step string // "resolve", "socket", "setsockopt", "nonblock", "bind", "listen"
	Addr string
	Err  error
}

func (e *StartupError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Step, e.Addr, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a SocketError, detecting transience from the errno.
func Wrap(op, addr string, err error) *SocketError {
	return &SocketError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Transient: classifyTransient(err),
	}
}

// Fatal creates a StartupError for the given setup step.
func Fatal(step, addr string, err error) *StartupError {
	return &StartupError{Step: step, Addr: addr, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsTransient reports whether err means "try again on the next poll".
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *SocketError
	if errors.As(err, &se) {
		return se.Transient
	}
	return classifyTransient(err)
}

// IsFatal reports whether err must stop the process.
func IsFatal(err error) bool {
	var se *StartupError
	return errors.As(err, &se)
}

// classifyTransient matches the errnos that a non-blocking socket
// returns when the call should simply be repeated.
func classifyTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR)
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use pollsrv/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
