// Package tcp provides the TCP listener.
package tcp

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/tcpserver/pkg/config"
)

// NewListener binds a TCP listener on addr. With reusePort set, several
// processes may bind the same address and share incoming connections.
// An injected listener function from deps takes precedence.
func NewListener(addr string, reusePort bool, deps *config.Dependencies) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", addr, err)
	}

	if listenFn := config.GetTCPListenerFunc(deps); listenFn != nil {
		nl, err := listenFn("tcp", tcpAddr)
		if err != nil {
			return nil, fmt.Errorf("listen(tcp, %s): %w", addr, err)
		}
		return nl, nil
	}

	lc := net.ListenConfig{
		Control: control(reusePort),
	}
	nl, err := lc.Listen(context.Background(), "tcp", tcpAddr.String())
	if err != nil {
		return nil, fmt.Errorf("listen(tcp, %s): %w", addr, err)
	}

	return nl, nil
}
