package server

import (
	"context"
	"errors"
	"fmt"
	stdnet "net"
	"sync"
	"time"

	"github.com/bytepowered/assert"
	"github.com/bytepowered/goes"
	"github.com/sirupsen/logrus"
	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/helper"
	"github.com/xsj0jsx/thin/internal"
	"github.com/xsj0jsx/thin/listener"
	"github.com/xsj0jsx/thin/net"
)

// Acceptor accepts connections from a listener and hands each one to a new
// instance of the listener's protocol handler type.
type Acceptor struct {
	listener *listener.Listener
	tcpOpts  net.TcpOptions
	conns    sync.WaitGroup
}

func NewAcceptor(l *listener.Listener) *Acceptor {
	assert.MustTrue(l != nil, "server: listener is nil")
	tcpOpts := net.DefaultTcpOptions()
	tcpOpts.NoDelay = l.Options().TcpNoDelay
	return &Acceptor{listener: l, tcpOpts: tcpOpts}
}

func (a *Acceptor) Listener() *listener.Listener {
	return a.listener
}

// Serve listens if needed and accepts until serveCtx is done or accept fails.
// The listener is closed when Serve returns.
func (a *Acceptor) Serve(serveCtx context.Context) error {
	if a.listener.State() != listener.StateListening {
		if err := a.listener.Listen(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	ln := a.listener.Accepter()
	assert.MustNotNil(ln, "server: listener accepter is nil")
	logrus.Infof("server: serve start: %s", a.listener)
	stop := context.AfterFunc(serveCtx, func() {
		helper.Close(a.listener)
	})
	defer func() {
		stop()
		helper.Close(a.listener)
		a.conns.Wait()
		logrus.Infof("server: serve stop: %s", a.listener)
	}()
	var tempDelay time.Duration
	for {
		conn, acErr := ln.Accept()
		if acErr != nil {
			select {
			case <-serveCtx.Done():
				return serveCtx.Err()
			default:
			}
			var netErr stdnet.Error
			if errors.As(acErr, &netErr) && netErr.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if maxDuration := 1 * time.Second; tempDelay > maxDuration {
					tempDelay = maxDuration
				}
				logrus.Warnf("server: accept: %s, retrying in %s", acErr, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return fmt.Errorf("server: accept. %w", acErr)
		}
		tempDelay = 0
		a.conns.Add(1)
		goes.Go(func() {
			defer a.conns.Done()
			a.handle(serveCtx, conn)
		})
	}
}

func (a *Acceptor) handle(serveCtx context.Context, conn stdnet.Conn) {
	defer helper.Close(conn)
	connCtx, connCancel := context.WithCancel(serveCtx)
	defer connCancel()
	connCtx = internal.SetupConnContext(connCtx, conn, a.listener.IsUnix())
	if err := net.SetTcpOptions(conn, a.tcpOpts); err != nil {
		thin.Logger(connCtx).Errorf("server: set conn options: %s", err)
		return
	}
	defer func(start time.Time) {
		thin.Logger(connCtx).
			WithField("duration", time.Since(start).String()).
			Debugf("server: conn term")
	}(thin.StartTime(connCtx))
	handler := a.listener.ProtocolType().New()
	assert.MustNotNil(handler, "server: protocol %s created nil handler", a.listener.ProtocolType())
	if err := handler.ServeConn(connCtx, conn); err != nil && !errors.Is(err, context.Canceled) {
		thin.Logger(connCtx).Errorf("server: conn error: %s", err)
	}
}
