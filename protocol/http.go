package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/xsj0jsx/thin"
)

var HttpType = &Type{
	Name: Namespace + ".Http",
	New: func() thin.Handler {
		return &Http{}
	},
}

var errConnDone = errors.New("http: conn done")

// Http serves one accepted connection with net/http.
type Http struct {
	// Handler defaults to a plain-text status handler.
	Handler http.Handler
}

func (h *Http) ServeConn(ctx context.Context, conn net.Conn) error {
	ln := newConnListener(conn)
	srv := &http.Server{
		Handler:           h.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
		ConnState: func(_ net.Conn, state http.ConnState) {
			if state == http.StateClosed || state == http.StateHijacked {
				ln.done()
			}
		},
	}
	stop := context.AfterFunc(ctx, func() {
		_ = srv.Close()
	})
	defer stop()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, errConnDone) && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: serve. %w", err)
	}
	return nil
}

func (h *Http) handler() http.Handler {
	if h.Handler != nil {
		return h.Handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "%s %s\n", r.Method, r.URL.Path)
	})
}

// connListener hands out a single conn, then blocks until that conn is done.
type connListener struct {
	conn   net.Conn
	once   sync.Once
	closed chan struct{}
	taken  bool
	mu     sync.Mutex
}

func newConnListener(conn net.Conn) *connListener {
	return &connListener{conn: conn, closed: make(chan struct{})}
}

func (l *connListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	if !l.taken {
		l.taken = true
		l.mu.Unlock()
		return l.conn, nil
	}
	l.mu.Unlock()
	<-l.closed
	return nil, errConnDone
}

func (l *connListener) done() {
	l.once.Do(func() {
		close(l.closed)
	})
}

func (l *connListener) Close() error {
	l.done()
	return nil
}

func (l *connListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}
