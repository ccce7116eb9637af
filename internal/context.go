package internal

import (
	"context"
	"net"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/xsj0jsx/thin"
)

// UnixSource is the log source of connections accepted on a Unix socket,
// which carry no remote host/port.
const UnixSource = "unix"

func SetupConnContext(ctx context.Context, conn net.Conn, unixPeer bool) context.Context {
	if unixPeer {
		return setContextLogID(ctx, shortuuid.New(), UnixSource)
	}
	remoteAddr := conn.RemoteAddr().String()
	id := shortuuid.NewWithNamespace(remoteAddr)
	return setContextLogID(ctx, id, remoteAddr)
}

func setContextLogID(ctx context.Context, id string, source string) context.Context {
	ctx = context.WithValue(ctx, thin.CtxKeyStartTime, time.Now())
	return thin.SetContextLogID(ctx, id, source)
}
