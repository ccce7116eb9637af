package helper

import (
	"errors"
	"io"
	"net"
	"os"
	"strings"
)

// Copier copies from to to until EOF. Closed, timed out and reset
// connections are reported as io.EOF.
func Copier(from io.Reader, to io.Writer) error {
	_, err := io.Copy(to, from)
	if err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.ErrClosedPipe) {
			return io.EOF
		}
		if strings.Contains(err.Error(), "connection reset by peer") {
			return io.EOF
		}
		return err
	}
	return nil
}
