package util

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// SockaddrString renders a raw socket address as "ip:port".  Unknown
// address families render as "?".
func SockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return FormatAddr(net.IP(a.Addr[:]).String(), a.Port)
	case *unix.SockaddrInet6:
		ip := net.IP(a.Addr[:]).String()
		if a.ZoneId != 0 {
			ip += "%" + zoneName(a.ZoneId)
		}
		return FormatAddr(ip, a.Port)
	case *unix.SockaddrUnix:
		if a.Name == "" {
			return "unix"
		}
		return a.Name
	default:
		return "?"
	}
}

// zoneName maps an interface index to its name, falling back to the
// decimal index when the interface is unknown.
func zoneName(id uint32) string {
	if ifi, err := net.InterfaceByIndex(int(id)); err == nil {
		return ifi.Name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
