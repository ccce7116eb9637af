//go:build !unix

package net

import (
	"errors"
	stdnet "net"
)

// Socket is unsupported on this platform; every operation fails.
type Socket struct {
	family Family
}

func NewSocket(family Family) (*Socket, error) {
	return nil, errors.ErrUnsupported
}

func (s *Socket) Fd() int {
	return -1
}

func (s *Socket) Family() Family {
	return s.family
}

func (s *Socket) SetReuseAddr(bool) error {
	return errors.ErrUnsupported
}

func (s *Socket) SetNoDelay(bool) error {
	return errors.ErrUnsupported
}

func (s *Socket) SetIPv6Only(bool) error {
	return errors.ErrUnsupported
}

func (s *Socket) Bind(Endpoint) error {
	return errors.ErrUnsupported
}

func (s *Socket) Listen(int) error {
	return errors.ErrUnsupported
}

func (s *Socket) Listener() (stdnet.Listener, error) {
	return nil, errors.ErrUnsupported
}

func (s *Socket) Close() error {
	return nil
}
