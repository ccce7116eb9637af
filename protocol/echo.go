package protocol

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/xsj0jsx/thin"
	"github.com/xsj0jsx/thin/helper"
)

var EchoType = &Type{
	Name: Namespace + ".Echo",
	New: func() thin.Handler {
		return &Echo{}
	},
}

// Echo writes back everything it reads until the peer closes.
type Echo struct{}

func (e *Echo) ServeConn(ctx context.Context, conn net.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()
	if err := helper.Copier(conn, conn); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
