package thin

import (
	"context"
	"net"
)

// Handler 协议处理器，每个接入连接创建一个新的实例。
type Handler interface {
	// ServeConn 处理单个连接，返回时连接由调用方关闭
	ServeConn(ctx context.Context, conn net.Conn) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, conn net.Conn) error

func (f HandlerFunc) ServeConn(ctx context.Context, conn net.Conn) error {
	return f(ctx, conn)
}
