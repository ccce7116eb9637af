package listener

import (
	"fmt"

	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/protocol"
)

const (
	DefaultBacklog = 1024
)

// Options 监听器的 socket 参数
type Options struct {
	// Protocol is a symbolic ("http") or qualified ("protocols.Http") name.
	Protocol string
	// ProtocolType, when set, is used instead of Protocol.
	ProtocolType *protocol.Type
	// TcpNoDelay applies to inet sockets only.
	TcpNoDelay bool
	// IPv6Only applies to IPv6 sockets only.
	IPv6Only bool
	Backlog  int
}

func DefaultOptions() Options {
	return Options{
		Protocol:   protocol.DefaultProtocol,
		TcpNoDelay: true,
		IPv6Only:   false,
		Backlog:    DefaultBacklog,
	}
}

// Option overrides one field of the defaults.
type Option func(*Options) error

func WithProtocol(name string) Option {
	return func(o *Options) error {
		if name == "" {
			return fmt.Errorf("listener: %w: protocol is empty", thin.ErrInvalidOption)
		}
		o.Protocol = name
		return nil
	}
}

func WithProtocolType(t *protocol.Type) Option {
	return func(o *Options) error {
		if t == nil {
			return fmt.Errorf("listener: %w: protocol type is nil", thin.ErrInvalidOption)
		}
		o.ProtocolType = t
		return nil
	}
}

func WithTcpNoDelay(enabled bool) Option {
	return func(o *Options) error {
		o.TcpNoDelay = enabled
		return nil
	}
}

func WithIPv6Only(enabled bool) Option {
	return func(o *Options) error {
		o.IPv6Only = enabled
		return nil
	}
}

func WithBacklog(backlog int) Option {
	return func(o *Options) error {
		if backlog <= 0 {
			return fmt.Errorf("listener: %w: backlog must be positive, was: %d", thin.ErrInvalidOption, backlog)
		}
		o.Backlog = backlog
		return nil
	}
}
