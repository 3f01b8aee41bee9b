//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl applies socket options to the listening socket before bind.
func listenControl(reusePort bool) func(network, address string, c syscall.RawConn) error {
	if !reusePort {
		return nil
	}

	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
