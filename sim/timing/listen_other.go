//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package timing

import (
	"fmt"
	"net"
	"time"
)

// Without a zero-timeout poll, every accept check waits for acceptGrace.
const acceptGrace = time.Millisecond

func listenTCP(addr string) (*net.TCPListener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("timing: resolve %q: %w", addr, err)
	}

	l, err := net.ListenTCP("tcp4", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("timing: listen on %q: %w", addr, err)
	}

	return l, nil
}

func pollReadable(_ *net.TCPListener) (bool, error) {
	return true, nil
}
