// Package session owns the single accepted connection.  A Session
// polls its socket for a bounded time, reads at most ChunkSize bytes
// per call into a buffer it reuses, and hands each chunk to a
// capability that may ask for the connection to be shut down.
//
// A Session is not safe for concurrent use; the control loop is its
// only caller.
package session

import (
	"time"

	"golang.org/x/sys/unix"

	"pollsrv/internal/capability"
	srverr "pollsrv/internal/errors"
	"pollsrv/internal/metrics"
	"pollsrv/internal/netpoll"
	"pollsrv/util"
)

// ChunkSize is the largest number of bytes one read takes from the
// socket.  Longer messages arrive as several chunks.
const ChunkSize = 16

// Status is the outcome of one Pump.
type Status int

const (
	// WouldBlock means nothing was read; try again next iteration.
	WouldBlock Status = iota
	// Closed means the session has ended and its socket is closed.
	Closed
	// Data means Result.Chunk holds the bytes just read.
	Data
)

func (s Status) String() string {
	switch s {
	case WouldBlock:
		return "would-block"
	case Closed:
		return "closed"
	case Data:
		return "data"
	default:
		return "unknown"
	}
}

// Result is returned by Pump.
type Result struct {
	Status Status
	// Chunk aliases the session buffer and is only valid until the
	// next Pump.
	Chunk  []byte
	Action capability.Action
	// Err is why a Closed session ended: the socket failure, or
	// ErrSessionClosed when Pump is called after Close.  It is nil
	// for an orderly EOF.
	Err error
}

// Session encapsulates the runtime state of the accepted connection.
type Session struct {
	fd        int
	peer      string
	connected bool
	buf       [ChunkSize]byte

	capability capability.Capability
	logger     *util.Logger
	metrics    *metrics.Collector
}

// New wraps an accepted, already non-blocking socket.  The session
// takes ownership of fd.  A nil capability defaults to capability.Quit.
func New(fd int, peer string, c capability.Capability, logger *util.Logger, m *metrics.Collector) *Session {
	if c == nil {
		c = capability.Quit{}
	}
	m.SessionOpened()
	return &Session{
		fd:         fd,
		peer:       peer,
		connected:  true,
		capability: c,
		logger:     logger,
		metrics:    m,
	}
}

// Connected reports whether the socket is still open.
func (s *Session) Connected() bool { return s.connected }

// Peer returns the remote address recorded at accept time.
func (s *Session) Peer() string { return s.peer }

// Pump waits up to timeout for the socket to become readable and then
// performs at most one read.
func (s *Session) Pump(timeout time.Duration) Result {
	if !s.connected {
		return Result{Status: Closed, Err: srverr.ErrSessionClosed}
	}

	ready, err := netpoll.WaitReadable(s.fd, timeout)
	if err != nil {
		// The descriptor was valid when accepted, so any poll failure
		// ends the session.
		serr := srverr.Wrap("poll", s.peer, err)
		s.fail(serr)
		return Result{Status: Closed, Err: serr}
	}
	if ready == netpoll.TimedOut {
		s.logger.Debug("read poll timed out")
		s.metrics.IdlePoll()
		return Result{Status: WouldBlock}
	}
	s.logger.Debug("read poll success")

	n, err := unix.Read(s.fd, s.buf[:])
	if err != nil {
		serr := srverr.Wrap("read", s.peer, err)
		if srverr.IsTransient(serr) {
			s.logger.Verbose("read: %v", serr)
			return Result{Status: WouldBlock}
		}
		s.fail(serr)
		return Result{Status: Closed, Err: serr}
	}
	if n == 0 {
		s.logger.Info("read EOF from %s", s.peer)
		s.Close() //nolint:errcheck
		return Result{Status: Closed}
	}

	chunk := s.buf[:n]
	s.metrics.ChunkRead(n)
	s.logger.Info("read %d bytes: %q", n, chunk)

	action := s.capability.Interpret(chunk)
	if action == capability.Shutdown {
		s.shutdown()
	}
	return Result{Status: Data, Chunk: chunk, Action: action}
}

// shutdown half-closes both directions.  The socket stays open until
// the resulting EOF is read, so a failed shutdown is only a warning.
func (s *Session) shutdown() {
	s.metrics.QuitReceived()
	s.logger.Info("quit requested by %s, shutting down connection", s.peer)
	if err := unix.Shutdown(s.fd, unix.SHUT_RDWR); err != nil {
		serr := srverr.Wrap("shutdown", s.peer, err)
		s.logger.Warn("%v", serr)
		s.metrics.RecordError(serr.Error())
	}
}

func (s *Session) fail(err *srverr.SocketError) {
	s.logger.Error("%v", err)
	s.metrics.RecordError(err.Error())
	s.Close() //nolint:errcheck
}

// Close closes the socket if it is still open.  It is safe to call
// more than once.
func (s *Session) Close() error {
	if !s.connected {
		return nil
	}
	s.connected = false
	err := unix.Close(s.fd)
	s.fd = -1
	s.metrics.SessionClosed()
	s.logger.Info("closed connection from %s", s.peer)
	if err != nil {
		return srverr.Wrap("close", s.peer, err)
	}
	return nil
}
