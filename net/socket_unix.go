//go:build unix

package net

import (
	"fmt"
	stdnet "net"
	"os"

	"golang.org/x/sys/unix"
)

// Socket is a raw stream socket owned by a single listener. It is created
// unbound so that options can be applied before bind.
type Socket struct {
	fd     int
	family Family
	closed bool
}

func NewSocket(family Family) (*Socket, error) {
	domain, err := sysDomain(family)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)
	return &Socket{fd: fd, family: family}, nil
}

func (s *Socket) Fd() int {
	return s.fd
}

func (s *Socket) Family() Family {
	return s.family
}

func (s *Socket) SetReuseAddr(enabled bool) error {
	return s.setsockopt("SO_REUSEADDR", unix.SOL_SOCKET, unix.SO_REUSEADDR, enabled)
}

func (s *Socket) SetNoDelay(enabled bool) error {
	return s.setsockopt("TCP_NODELAY", unix.IPPROTO_TCP, unix.TCP_NODELAY, enabled)
}

func (s *Socket) SetIPv6Only(enabled bool) error {
	return s.setsockopt("IPV6_V6ONLY", unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, enabled)
}

func (s *Socket) Bind(ep Endpoint) error {
	sa, err := sockaddr(ep)
	if err != nil {
		return err
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	return nil
}

func (s *Socket) Listen(backlog int) error {
	if err := unix.Listen(s.fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}

// Listener returns an accept-ready view of a listening socket. The view owns
// a duplicate descriptor and must be closed independently of the socket.
func (s *Socket) Listener() (stdnet.Listener, error) {
	nfd, err := unix.Dup(s.fd)
	if err != nil {
		return nil, os.NewSyscallError("dup", err)
	}
	f := os.NewFile(uintptr(nfd), fmt.Sprintf("%s-listener", s.family))
	defer f.Close()
	return stdnet.FileListener(f)
}

// Close releases the descriptor. Calling it again is a no-op.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := unix.Close(s.fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func (s *Socket) setsockopt(name string, level, opt int, enabled bool) error {
	value := 0
	if enabled {
		value = 1
	}
	if err := unix.SetsockoptInt(s.fd, level, opt, value); err != nil {
		return os.NewSyscallError("setsockopt "+name, err)
	}
	return nil
}

func sysDomain(family Family) (int, error) {
	switch family {
	case FamilyIPv4:
		return unix.AF_INET, nil
	case FamilyIPv6:
		return unix.AF_INET6, nil
	case FamilyUnix:
		return unix.AF_UNIX, nil
	default:
		return 0, fmt.Errorf("unsupported address family: %d", family)
	}
}

func sockaddr(ep Endpoint) (unix.Sockaddr, error) {
	switch ep.Family() {
	case FamilyUnix:
		return &unix.SockaddrUnix{Name: ep.Path()}, nil
	case FamilyIPv4:
		sa := &unix.SockaddrInet4{Port: int(ep.Port())}
		if ep.Host() != "" {
			ip := stdnet.ParseIP(ep.Host()).To4()
			if ip == nil {
				return nil, &stdnet.AddrError{Err: "invalid IPv4 address", Addr: ep.Host()}
			}
			copy(sa.Addr[:], ip)
		}
		return sa, nil
	default:
		sa := &unix.SockaddrInet6{Port: int(ep.Port())}
		ip := stdnet.ParseIP(ep.Host()).To16()
		if ip == nil {
			return nil, &stdnet.AddrError{Err: "invalid IPv6 address", Addr: ep.Host()}
		}
		copy(sa.Addr[:], ip)
		return sa, nil
	}
}
