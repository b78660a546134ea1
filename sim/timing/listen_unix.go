//go:build linux || darwin || freebsd || netbsd || openbsd

package timing

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// acceptGrace bounds Accept once the listener has reported a pending
// connection.
const acceptGrace = 100 * time.Millisecond

// listenTCP listens on an IPv4 address with a backlog of one, so that at most
// one controller waits to be accepted while another one is connected.
func listenTCP(addr string) (*net.TCPListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("timing: resolve %q: %w", addr, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("timing: socket: %w", err)
	}

	unix.CloseOnExec(fd)

	err = bindAndListen(fd, tcpAddr)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("timing: listen on %q: %w", addr, err)
	}

	f := os.NewFile(uintptr(fd), "sync-"+addr)
	defer f.Close()

	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("timing: listen on %q: %w", addr, err)
	}

	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		l.Close()
		return nil, fmt.Errorf("timing: %q is not a TCP address", addr)
	}

	return tcpListener, nil
}

func bindAndListen(fd int, addr *net.TCPAddr) error {
	err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err != nil {
		return err
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}

	err = unix.Bind(fd, sa)
	if err != nil {
		return err
	}

	return unix.Listen(fd, 1)
}

// pollReadable checks, without blocking, whether a connection is pending on
// the listener. Interrupted polls report no pending connection.
func pollReadable(l *net.TCPListener) (bool, error) {
	rc, err := l.SyscallConn()
	if err != nil {
		return false, err
	}

	var (
		n       int
		pollErr error
	)

	err = rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, pollErr = unix.Poll(fds, 0)
	})
	if err != nil {
		return false, err
	}

	if errors.Is(pollErr, unix.EINTR) || errors.Is(pollErr, unix.EAGAIN) {
		return false, nil
	}

	if pollErr != nil {
		return false, pollErr
	}

	return n > 0, nil
}
