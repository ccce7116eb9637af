package net

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xsj0jsx/thin"
)

const acceptedFormats = "3000, *:3000, 0.0.0.0:3000, [::]:3000, /file.sock or unix:file.sock"

var (
	unixPathPattern   = regexp.MustCompile(`^(/.*)$`)
	unixPrefixPattern = regexp.MustCompile(`^unix:(.*)$`)
	anyPortPattern    = regexp.MustCompile(`^(?:\*:)?(\d+)$`)
	ipv4PortPattern   = regexp.MustCompile(`^((?:\d{1,3}\.){3}\d{1,3}):(\d+)$`)
	ipv6PortPattern   = regexp.MustCompile(`^\[([a-fA-F0-9:]+)\]:(\d+)$`)
)

type EndpointKind uint8

const (
	EndpointInvalid EndpointKind = iota
	EndpointInet
	EndpointUnix
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointInet:
		return "inet"
	case EndpointUnix:
		return "unix"
	default:
		return "invalid"
	}
}

// Endpoint is a resolved local address: either a host/port pair or a
// Unix socket path, never both. The zero value is invalid.
type Endpoint struct {
	kind EndpointKind
	host string
	port Port
	path string
}

// InetEndpoint returns a host/port endpoint. An empty host binds all interfaces.
func InetEndpoint(host string, port Port) Endpoint {
	return Endpoint{kind: EndpointInet, host: host, port: port}
}

// UnixEndpoint returns a Unix socket endpoint. The path must not be empty.
func UnixEndpoint(path string) (Endpoint, error) {
	if path == "" {
		return Endpoint{}, invalidAddress("unix:")
	}
	return Endpoint{kind: EndpointUnix, path: path}, nil
}

// PortEndpoint returns an endpoint on all interfaces at the given port.
func PortEndpoint(port int64) (Endpoint, error) {
	p, err := PortFromInt(port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w. %w", invalidAddress(port), err)
	}
	return InetEndpoint("", p), nil
}

// ResolveEndpoint resolves an address descriptor: an integer port or a string
// accepted by ParseEndpoint.
func ResolveEndpoint(addr any) (Endpoint, error) {
	switch v := addr.(type) {
	case int:
		return PortEndpoint(int64(v))
	case int32:
		return PortEndpoint(int64(v))
	case int64:
		return PortEndpoint(v)
	case uint:
		return PortEndpoint(int64(min(v, 1<<16)))
	case uint16:
		return PortEndpoint(int64(v))
	case uint32:
		return PortEndpoint(int64(v))
	case Port:
		return InetEndpoint("", v), nil
	case string:
		return ParseEndpoint(v)
	case Endpoint:
		if !v.IsValid() {
			return Endpoint{}, invalidAddress(v)
		}
		return v, nil
	default:
		return Endpoint{}, invalidAddress(addr)
	}
}

// ParseEndpoint parses the textual address forms, first match wins:
//
//	3000, *:3000        all interfaces
//	0.0.0.0:3000        IPv4 host
//	[::]:3000           IPv6 host
//	/file.sock          Unix socket
//	unix:file.sock      Unix socket
func ParseEndpoint(addr string) (Endpoint, error) {
	if m := unixPathPattern.FindStringSubmatch(addr); m != nil {
		return UnixEndpoint(m[1])
	}
	if m := unixPrefixPattern.FindStringSubmatch(addr); m != nil {
		if m[1] == "" {
			return Endpoint{}, invalidAddress(addr)
		}
		return UnixEndpoint(m[1])
	}
	if m := anyPortPattern.FindStringSubmatch(addr); m != nil {
		return inetWith(addr, "", m[1])
	}
	if m := ipv4PortPattern.FindStringSubmatch(addr); m != nil {
		return inetWith(addr, m[1], m[2])
	}
	if m := ipv6PortPattern.FindStringSubmatch(addr); m != nil {
		return inetWith(addr, m[1], m[2])
	}
	return Endpoint{}, invalidAddress(addr)
}

func inetWith(addr string, host string, port string) (Endpoint, error) {
	p, err := PortFromString(port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w. %w", invalidAddress(addr), err)
	}
	return InetEndpoint(host, p), nil
}

func invalidAddress(addr any) error {
	return fmt.Errorf("%w %#v. Accepted formats are: %s", thin.ErrInvalidAddress, addr, acceptedFormats)
}

func (e Endpoint) Kind() EndpointKind {
	return e.kind
}

func (e Endpoint) IsValid() bool {
	return e.kind != EndpointInvalid
}

func (e Endpoint) IsUnix() bool {
	return e.kind == EndpointUnix
}

func (e Endpoint) Host() string {
	return e.host
}

func (e Endpoint) Port() Port {
	return e.port
}

func (e Endpoint) Path() string {
	return e.path
}

// Family reports the socket family implied by the endpoint: Unix if a path is
// set, IPv6 if the host contains a colon, IPv4 otherwise.
func (e Endpoint) Family() Family {
	if e.kind == EndpointUnix {
		return FamilyUnix
	}
	if strings.Contains(e.host, ":") {
		return FamilyIPv6
	}
	return FamilyIPv4
}

func (e Endpoint) Network() Network {
	switch e.kind {
	case EndpointUnix:
		return NetworkUNIX
	case EndpointInet:
		return NetworkTCP
	default:
		return NetworkUnknown
	}
}

func (e Endpoint) String() string {
	switch e.kind {
	case EndpointUnix:
		return e.path
	case EndpointInet:
		return e.host + ":" + e.port.String()
	default:
		return "<invalid>"
	}
}
