package core

import (
	"context"
	"time"

	"pollsrv/internal/capability"
	srverr "pollsrv/internal/errors"
	"pollsrv/internal/listener"
	"pollsrv/internal/metrics"
	"pollsrv/internal/session"
	"pollsrv/util"
)

// ServeMode binds one listening socket and serves at most one client
// at a time from a single goroutine.  Each Step performs exactly one
// bounded wait: on the listener while no session is active, otherwise
// on the session.
type ServeMode struct {
	Network     string // "tcp4" or "tcp6"
	Host        string
	Port        int
	PollTimeout time.Duration
	Capability  capability.Capability
	Logger      *util.Logger
	Metrics     *metrics.Collector

	listener *listener.Listener
	session  *session.Session // nil while awaiting a connection
}

// Start sets up the listening socket.  Any error is fatal.
func (m *ServeMode) Start() error {
	if m.listener != nil {
		return nil
	}
	m.Logger.Info("setting up accepting socket on %s", util.FormatAddr(m.Host, m.Port))
	ln, err := listener.Listen(m.Network, m.Host, m.Port, m.Logger, m.Metrics)
	if err != nil {
		return err
	}
	ln.Capability = m.Capability
	m.listener = ln
	return nil
}

// Addr returns the bound listening address, or "" before Start.
func (m *ServeMode) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr()
}

// Active reports whether a session currently holds the connection slot.
func (m *ServeMode) Active() bool { return m.session != nil }

// Step runs one iteration of the control loop.  It only returns an
// error when the process must stop.  Start must have been called.
func (m *ServeMode) Step() error {
	if m.listener == nil {
		return srverr.ErrListenerClosed
	}
	if m.session == nil {
		sess, err := m.listener.AcceptNext(m.PollTimeout)
		if err != nil {
			return err
		}
		m.session = sess
		return nil
	}

	r := m.session.Pump(m.PollTimeout)
	switch r.Status {
	case session.Closed:
		if r.Err != nil {
			m.Logger.Verbose("session %s ended after %v", m.session.Peer(), r.Err)
		}
		m.Logger.Verbose("session %s ended: %s", m.session.Peer(), m.Metrics.JSON())
		m.session = nil
	case session.Data, session.WouldBlock:
		// Keep pumping the same session.
	}
	return nil
}

// Run starts the listener if needed and steps the loop until ctx is
// cancelled or a fatal error occurs.
func (m *ServeMode) Run(ctx context.Context) error {
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			m.Logger.Verbose("stopping: %s", m.Metrics.JSON())
			return nil
		default:
		}

		if err := m.Step(); err != nil {
			return err
		}
	}
}

// Close ends the active session, if any, and closes the listener.
func (m *ServeMode) Close() error {
	var sessErr, lnErr error
	if m.session != nil {
		sessErr = m.session.Close()
		m.session = nil
	}
	if m.listener != nil {
		lnErr = m.listener.Close()
	}
	return srverr.Join(sessErr, lnErr)
}
