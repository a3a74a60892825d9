// Package netpoll waits, for a bounded time, until a single socket
// descriptor becomes readable.  It is the only place that calls
// poll(2); both the listener and the session go through it.
package netpoll

import (
	"time"

	"golang.org/x/sys/unix"
)

// Readiness is the outcome of a single bounded wait.
type Readiness int

const (
	// TimedOut means the timeout elapsed with nothing to read.
	TimedOut Readiness = iota
	// Ready means the descriptor is readable, hung up, or in error;
	// the following accept/read reports which.
	Ready
)

func (r Readiness) String() string {
	switch r {
	case TimedOut:
		return "timed out"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// WaitReadable blocks for at most timeout waiting for POLLIN on fd.
// A negative timeout waits indefinitely.  Errors are returned as the
// raw errno so callers can classify them.
func WaitReadable(fd int, timeout time.Duration) (Readiness, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMillis(timeout))
	if err != nil {
		return TimedOut, err
	}
	if n == 0 {
		return TimedOut, nil
	}
	return Ready, nil
}

func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	return int(d / time.Millisecond)
}
