//go:build unix

package listener

import (
	"errors"
	"io/fs"
	stdnet "net"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xsj0jsx/thin"
	"golang.org/x/sys/unix"
)

// socketDir keeps socket paths short enough for sun_path.
func socketDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "thin")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}

// staleSocket leaves a socket file at path with nothing listening on it.
func staleSocket(t *testing.T, path string) {
	ln, err := stdnet.ListenUnix("unix", &stdnet.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	ln.SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	info, err := os.Lstat(path)
	require.NoError(t, err)
	require.Equal(t, fs.ModeSocket, info.Mode().Type())
}

func getsockopt(t *testing.T, fd, level, opt int) int {
	v, err := unix.GetsockoptInt(fd, level, opt)
	require.NoError(t, err)
	return v
}

func skipIfNoIPv6(t *testing.T, err error) {
	if errors.Is(err, syscall.EAFNOSUPPORT) || errors.Is(err, syscall.EADDRNOTAVAIL) || errors.Is(err, syscall.EPROTONOSUPPORT) {
		t.Skipf("ipv6 not available: %s", err)
	}
}

func TestListener_SocketMemoized(t *testing.T) {
	l, err := New("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	first, err := l.Socket()
	require.NoError(t, err)
	assert.Equal(t, StateCreated, l.State())
	second, err := l.Socket()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, first.Fd(), second.Fd())
}

func TestListener_SocketOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		l, err := New("127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()
		s, err := l.Socket()
		require.NoError(t, err)
		assert.NotZero(t, getsockopt(t, s.Fd(), unix.SOL_SOCKET, unix.SO_REUSEADDR))
		assert.NotZero(t, getsockopt(t, s.Fd(), unix.IPPROTO_TCP, unix.TCP_NODELAY))
	})

	t.Run("NoDelayDisabled", func(t *testing.T) {
		l, err := New("127.0.0.1:0", WithTcpNoDelay(false))
		require.NoError(t, err)
		defer l.Close()
		s, err := l.Socket()
		require.NoError(t, err)
		assert.Zero(t, getsockopt(t, s.Fd(), unix.IPPROTO_TCP, unix.TCP_NODELAY))
	})

	t.Run("NotReapplied", func(t *testing.T) {
		l, err := New("127.0.0.1:0")
		require.NoError(t, err)
		defer l.Close()
		s, err := l.Socket()
		require.NoError(t, err)
		require.NoError(t, s.SetNoDelay(false))
		_, err = l.Socket()
		require.NoError(t, err)
		assert.Zero(t, getsockopt(t, s.Fd(), unix.IPPROTO_TCP, unix.TCP_NODELAY))
	})

	t.Run("IPv6Only", func(t *testing.T) {
		l, err := New("[::1]:0", WithIPv6Only(true))
		require.NoError(t, err)
		defer l.Close()
		s, err := l.Socket()
		skipIfNoIPv6(t, err)
		require.NoError(t, err)
		assert.NotZero(t, getsockopt(t, s.Fd(), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY))
	})

	t.Run("Unix", func(t *testing.T) {
		l, err := New(filepath.Join(socketDir(t), "opts.sock"), WithIPv6Only(true))
		require.NoError(t, err)
		defer l.Close()
		s, err := l.Socket()
		require.NoError(t, err)
		assert.True(t, s.Family().IsUnix())
	})
}

func TestListener_CloseIdempotent(t *testing.T) {
	t.Run("NeverCreated", func(t *testing.T) {
		l, err := New(3000)
		require.NoError(t, err)
		assert.NoError(t, l.Close())
		assert.NoError(t, l.Close())
		assert.Equal(t, StateClosed, l.State())
	})

	t.Run("Listening", func(t *testing.T) {
		l, err := New("127.0.0.1:0")
		require.NoError(t, err)
		require.NoError(t, l.Listen())
		assert.NoError(t, l.Close())
		assert.NoError(t, l.Close())
		assert.Nil(t, l.Accepter())
	})

	t.Run("SocketAfterClose", func(t *testing.T) {
		l, err := New("127.0.0.1:0")
		require.NoError(t, err)
		require.NoError(t, l.Close())
		_, err = l.Socket()
		assert.ErrorIs(t, err, thin.ErrClosed)
		assert.ErrorIs(t, l.Listen(), thin.ErrClosed)
	})
}

func TestListener_ListenTCP(t *testing.T) {
	l, err := New("127.0.0.1:0", WithBacklog(8))
	require.NoError(t, err)
	defer l.Close()
	assert.Nil(t, l.Addr())
	require.NoError(t, l.Listen())
	assert.Equal(t, StateListening, l.State())

	addr, ok := l.Addr().(*stdnet.TCPAddr)
	require.True(t, ok)
	assert.NotZero(t, addr.Port)

	conn, err := stdnet.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()
	accepted, err := l.Accepter().Accept()
	require.NoError(t, err)
	defer accepted.Close()
	assert.Equal(t, conn.LocalAddr().String(), accepted.RemoteAddr().String())

	err = l.Listen()
	assert.ErrorIs(t, err, thin.ErrBind)
}

func TestListener_ListenIPv6(t *testing.T) {
	l, err := New("[::1]:0")
	require.NoError(t, err)
	defer l.Close()
	err = l.Listen()
	skipIfNoIPv6(t, err)
	require.NoError(t, err)
	addr, ok := l.Addr().(*stdnet.TCPAddr)
	require.True(t, ok)
	assert.True(t, addr.IP.Equal(stdnet.IPv6loopback))
}

func TestListener_AddressInUse(t *testing.T) {
	first, err := New("127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.Listen())

	second, err := New(first.Addr().String())
	require.NoError(t, err)
	defer second.Close()
	err = second.Listen()
	require.Error(t, err)
	assert.ErrorIs(t, err, thin.ErrBind)
	assert.ErrorIs(t, err, syscall.EADDRINUSE)
}

func TestListener_ListenUnix(t *testing.T) {
	path := filepath.Join(socketDir(t), "app.sock")
	l, err := New("unix:" + path)
	require.NoError(t, err)
	require.NoError(t, l.Listen())

	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.Equal(t, fs.ModeSocket, info.Mode().Type())

	conn, err := stdnet.Dial("unix", path)
	require.NoError(t, err)
	accepted, err := l.Accepter().Accept()
	require.NoError(t, err)
	_ = accepted.Close()
	_ = conn.Close()

	require.NoError(t, l.Close())
	_, err = os.Lstat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoError(t, l.Close())
}

func TestListener_StaleSocketRemoved(t *testing.T) {
	path := filepath.Join(socketDir(t), "stale.sock")
	staleSocket(t, path)

	l, err := New(path)
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, l.Listen())

	conn, err := stdnet.Dial("unix", path)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestListener_RegularFileKept(t *testing.T) {
	path := filepath.Join(socketDir(t), "data.sock")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))

	l, err := New(path)
	require.NoError(t, err)
	err = l.Listen()
	assert.ErrorIs(t, err, thin.ErrBind)
	assert.ErrorIs(t, err, syscall.EADDRINUSE)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestListener_DirectoryKept(t *testing.T) {
	path := filepath.Join(socketDir(t), "dir.sock")
	require.NoError(t, os.Mkdir(path, 0o700))

	l, err := New(path)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Listen(), thin.ErrBind)
	require.NoError(t, l.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListener_SymlinkKept(t *testing.T) {
	dir := socketDir(t)
	target := filepath.Join(dir, "target.sock")
	staleSocket(t, target)
	link := filepath.Join(dir, "link.sock")
	require.NoError(t, os.Symlink(target, link))

	l, err := New(link)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Listen(), thin.ErrBind)
	require.NoError(t, l.Close())

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, fs.ModeSymlink, info.Mode().Type())
}
