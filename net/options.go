package net

import (
	"net"
	"time"
)

// TcpOptions are applied to every accepted TCP connection. The Go runtime
// enables TCP_NODELAY on accepted conns, so the listener's setting has to be
// applied again here.
type TcpOptions struct {
	NoDelay   bool          `json:"no_delay"`
	KeepAlive time.Duration `json:"keep_alive"`
}

func DefaultTcpOptions() TcpOptions {
	return TcpOptions{
		NoDelay:   true,
		KeepAlive: time.Second * 15,
	}
}

// SetTcpOptions is a no-op for non-TCP conns.
func SetTcpOptions(conn net.Conn, opts TcpOptions) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	// No delay
	if err := tcpConn.SetNoDelay(opts.NoDelay); err != nil {
		return err
	}
	// Keep alive
	if opts.KeepAlive > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(opts.KeepAlive); err != nil {
			return err
		}
	}
	return nil
}
