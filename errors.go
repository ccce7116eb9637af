package thin

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidProtocol = errors.New("invalid protocol")
	ErrInvalidOption   = errors.New("invalid option")
	ErrSocketCreation  = errors.New("socket creation failed")
	ErrBind            = errors.New("bind failed")
	ErrClosed          = errors.New("listener closed")
)

// OpError is the error returned by socket operations. Kind is one of
// ErrSocketCreation, ErrBind or ErrClosed; Err is the underlying OS error.
type OpError struct {
	Kind error
	Op   string
	Addr string
	Err  error
}

func NewOpError(kind error, op string, addr string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Addr: addr, Err: err}
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Op, e.Addr)
	}
	return fmt.Sprintf("%s: %s %s. %s", e.Kind, e.Op, e.Addr, e.Err)
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
