// Package listener owns the passive socket.  It resolves the bind
// address, opens a non-blocking stream socket with SO_REUSEADDR, binds
// and listens, and then hands out at most one accepted connection per
// call as a session.
//
// Setup failures are returned as *errors.StartupError and are fatal.
// Failures while accepting are logged and reported as "nothing
// accepted" so the control loop simply polls again.
package listener

import (
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"pollsrv/internal/capability"
	srverr "pollsrv/internal/errors"
	"pollsrv/internal/metrics"
	"pollsrv/internal/netpoll"
	"pollsrv/internal/session"
	"pollsrv/util"
)

// Listener is the accepting socket.
type Listener struct {
	// Capability is given to every accepted session.  Nil means
	// capability.Quit.
	Capability capability.Capability

	fd      int
	addr    string // bound address, from getsockname
	logger  *util.Logger
	metrics *metrics.Collector
}

// Listen resolves host:port for network ("tcp4" or "tcp6") and returns
// a listening, non-blocking socket.  An empty host binds the wildcard
// address; port 0 lets the kernel choose.
func Listen(network, host string, port int, logger *util.Logger, m *metrics.Collector) (*Listener, error) {
	want := util.FormatAddr(host, port)

	sa, family, err := resolve(network, host, port)
	if err != nil {
		return nil, srverr.Fatal("resolve", want, err)
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, srverr.Fatal("socket", want, err)
	}
	unix.CloseOnExec(fd)

	if err := setup(fd, sa, want); err != nil {
		unix.Close(fd) //nolint:errcheck
		return nil, err
	}

	l := &Listener{fd: fd, addr: want, logger: logger, metrics: m}
	if bound, err := unix.Getsockname(fd); err == nil {
		l.addr = util.SockaddrString(bound)
	}
	logger.Info("listening on %s (%s)", l.addr, network)
	return l, nil
}

// setup applies socket options and starts listening.
func setup(fd int, sa unix.Sockaddr, addr string) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return srverr.Fatal("setsockopt", addr, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return srverr.Fatal("nonblock", addr, err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		return srverr.Fatal("bind", addr, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return srverr.Fatal("listen", addr, err)
	}
	return nil
}

// resolve turns host:port into a socket address of the right family.
func resolve(network, host string, port int) (unix.Sockaddr, int, error) {
	ta, err := net.ResolveTCPAddr(network, util.FormatAddr(host, port))
	if err != nil {
		return nil, 0, err
	}

	switch network {
	case "tcp4":
		sa := &unix.SockaddrInet4{Port: ta.Port}
		if ta.IP != nil {
			ip4 := ta.IP.To4()
			if ip4 == nil {
				return nil, 0, srverr.ErrNoAddress
			}
			copy(sa.Addr[:], ip4)
		}
		return sa, unix.AF_INET, nil
	case "tcp6":
		sa := &unix.SockaddrInet6{Port: ta.Port}
		if ta.IP != nil {
			copy(sa.Addr[:], ta.IP.To16())
		}
		if ta.Zone != "" {
			if ifi, err := net.InterfaceByName(ta.Zone); err == nil {
				sa.ZoneId = uint32(ifi.Index)
			} else if id, err := strconv.ParseUint(ta.Zone, 10, 32); err == nil {
				sa.ZoneId = uint32(id)
			}
		}
		return sa, unix.AF_INET6, nil
	default:
		return nil, 0, net.UnknownNetworkError(network)
	}
}

// Addr returns the bound address, including the kernel-chosen port.
func (l *Listener) Addr() string { return l.addr }

// AcceptNext waits up to timeout for a pending connection and accepts
// it.  It returns (nil, nil) when nothing was accepted: on timeout, on
// a transient failure, and on a logged non-transient failure.  The only
// error it returns is fatal, from configuring the accepted socket.
func (l *Listener) AcceptNext(timeout time.Duration) (*session.Session, error) {
	if l.fd < 0 {
		return nil, srverr.ErrListenerClosed
	}

	ready, err := netpoll.WaitReadable(l.fd, timeout)
	if err != nil {
		l.report("accept poll failed", srverr.Wrap("poll", l.addr, err))
		return nil, nil
	}
	if ready == netpoll.TimedOut {
		l.logger.Debug("accept poll timed out")
		l.metrics.IdlePoll()
		return nil, nil
	}
	l.logger.Debug("accept poll success")

	nfd, sa, err := unix.Accept(l.fd)
	if err != nil {
		l.report("accept failed", srverr.Wrap("accept", l.addr, err))
		return nil, nil
	}
	unix.CloseOnExec(nfd)

	peer := util.SockaddrString(sa)
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd) //nolint:errcheck
		return nil, srverr.Fatal("nonblock", peer, err)
	}

	l.logger.Info("connected: %s", peer)
	return session.New(nfd, peer, l.Capability, l.logger, l.metrics), nil
}

// report logs a runtime failure.  Transient failures are only shown
// in verbose mode.
func (l *Listener) report(msg string, err *srverr.SocketError) {
	if srverr.IsTransient(err) {
		l.logger.Verbose("%s: %v", msg, err)
		return
	}
	l.logger.Error("%s: %v", msg, err)
	l.metrics.RecordError(err.Error())
}

// Close closes the listening socket.  It is safe to call more than
// once.
func (l *Listener) Close() error {
	if l.fd < 0 {
		return nil
	}
	err := unix.Close(l.fd)
	l.fd = -1
	if err != nil {
		return srverr.Wrap("close", l.addr, err)
	}
	return nil
}
