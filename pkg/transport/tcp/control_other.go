//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package tcp

import (
	"syscall"
)

// control is a no-op where SO_REUSEPORT is unavailable.
func control(bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
