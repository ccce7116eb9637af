// Package listener binds a resolved endpoint to a socket and tracks its
// lifecycle: Unbound, Created, Listening, Closed.
//
// A Listener owns the file at its Unix socket path while it exists. Two
// listeners configured with the same path at the same time are not supported.
package listener

import (
	"errors"
	"fmt"
	"io/fs"
	stdnet "net"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/net"
	"github.com/xsj0jsx/thin/protocol"
)

var errAlreadyListening = errors.New("already listening")

type State int32

const (
	StateUnbound State = iota
	StateCreated
	StateListening
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateCreated:
		return "created"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Listener struct {
	endpoint net.Endpoint
	options  Options
	protocol *protocol.Type

	mu       sync.Mutex
	state    State
	socket   *net.Socket
	accepter stdnet.Listener
}

// New resolves the address and the protocol type. No socket is created.
func New(addr any, opts ...Option) (*Listener, error) {
	endpoint, err := net.ResolveEndpoint(addr)
	if err != nil {
		return nil, fmt.Errorf("listener: %w", err)
	}
	options := DefaultOptions()
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}
	protocolType, err := protocol.Resolve(options.Protocol, options.ProtocolType)
	if err != nil {
		return nil, fmt.Errorf("listener: %w", err)
	}
	return &Listener{
		endpoint: endpoint,
		options:  options,
		protocol: protocolType,
		state:    StateUnbound,
	}, nil
}

func (l *Listener) Endpoint() net.Endpoint {
	return l.endpoint
}

func (l *Listener) Options() Options {
	return l.options
}

// ProtocolType is the handler type the acceptor instantiates per connection.
func (l *Listener) ProtocolType() *protocol.Type {
	return l.protocol
}

// IsUnix reports whether peers have no remote host/port.
func (l *Listener) IsUnix() bool {
	return l.endpoint.IsUnix()
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Socket returns the socket, creating and configuring it on first use.
func (l *Listener) Socket() (*net.Socket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lazySocket()
}

// Listen removes a stale socket file, binds and starts listening. It does
// not retry.
func (l *Listener) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateListening:
		return thin.NewOpError(thin.ErrBind, "listen", l.endpoint.String(), errAlreadyListening)
	case StateClosed:
		return thin.NewOpError(thin.ErrClosed, "listen", l.endpoint.String(), nil)
	}
	if err := l.removeSocketFile(); err != nil {
		return thin.NewOpError(thin.ErrBind, "remove", l.endpoint.String(), err)
	}
	socket, err := l.lazySocket()
	if err != nil {
		return err
	}
	if err := socket.Bind(l.endpoint); err != nil {
		return thin.NewOpError(thin.ErrBind, "bind", l.endpoint.String(), err)
	}
	if err := socket.Listen(l.options.Backlog); err != nil {
		return thin.NewOpError(thin.ErrBind, "listen", l.endpoint.String(), err)
	}
	accepter, err := socket.Listener()
	if err != nil {
		return thin.NewOpError(thin.ErrBind, "listen", l.endpoint.String(), err)
	}
	l.accepter = accepter
	l.state = StateListening
	logrus.Infof("listener: listening: %s, backlog: %d", l, l.options.Backlog)
	return nil
}

// Accepter returns the accept-ready view of the socket, nil unless listening.
func (l *Listener) Accepter() stdnet.Listener {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accepter
}

// Addr returns the bound address, nil unless listening.
func (l *Listener) Addr() stdnet.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.accepter == nil {
		return nil
	}
	return l.accepter.Addr()
}

// Close releases the socket and removes the Unix socket file. It is safe to
// call more than once, and before any socket was created.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	if l.accepter != nil {
		if err := l.accepter.Close(); err != nil && !errors.Is(err, stdnet.ErrClosed) {
			errs = append(errs, err)
		}
		l.accepter = nil
	}
	if l.socket != nil {
		if err := l.socket.Close(); err != nil {
			errs = append(errs, err)
		}
		l.socket = nil
	}
	if err := l.removeSocketFile(); err != nil {
		errs = append(errs, err)
	}
	if l.state != StateClosed {
		logrus.Infof("listener: closed: %s", l)
	}
	l.state = StateClosed
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("listener: close %s. %w", l.endpoint, err)
	}
	return nil
}

// String renders "<protocol> on <address>" for logs.
func (l *Listener) String() string {
	return l.protocol.ShortName() + " on " + l.endpoint.String()
}

func (l *Listener) lazySocket() (*net.Socket, error) {
	if l.state == StateClosed {
		return nil, thin.NewOpError(thin.ErrClosed, "socket", l.endpoint.String(), nil)
	}
	if l.socket != nil {
		return l.socket, nil
	}
	socket, err := net.NewSocket(l.endpoint.Family())
	if err != nil {
		return nil, thin.NewOpError(thin.ErrSocketCreation, "socket", l.endpoint.String(), err)
	}
	if err := l.configure(socket); err != nil {
		_ = socket.Close()
		return nil, thin.NewOpError(thin.ErrSocketCreation, "setsockopt", l.endpoint.String(), err)
	}
	l.socket = socket
	l.state = StateCreated
	logrus.Debugf("listener: socket created: %s, family: %s", l.endpoint, socket.Family())
	return socket, nil
}

func (l *Listener) configure(socket *net.Socket) error {
	if err := socket.SetReuseAddr(true); err != nil {
		return err
	}
	if l.endpoint.IsUnix() {
		return nil
	}
	if err := socket.SetNoDelay(l.options.TcpNoDelay); err != nil {
		return err
	}
	if l.options.IPv6Only && l.endpoint.Family().IsIPv6() {
		if err := socket.SetIPv6Only(true); err != nil {
			return err
		}
	}
	return nil
}

// removeSocketFile deletes the node at the Unix path only if it is itself a
// socket. Regular files, directories and symlinks are left alone.
func (l *Listener) removeSocketFile() error {
	if !l.endpoint.IsUnix() {
		return nil
	}
	path := l.endpoint.Path()
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Mode().Type() != fs.ModeSocket {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	logrus.Debugf("listener: removed socket file: %s", path)
	return nil
}
