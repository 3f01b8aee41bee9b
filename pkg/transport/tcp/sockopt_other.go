//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package tcp

import "syscall"

// SO_REUSEPORT is not portable beyond the BSDs and Linux; the option is ignored.
func listenControl(bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
