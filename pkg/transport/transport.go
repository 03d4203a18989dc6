// Package transport opens the listening socket a server accepts raw
// connections from.
//
//   - TCP: a plain TCP listener, optionally with SO_REUSEPORT
//   - UDP: KCP sessions multiplexed over one UDP socket, presented as a
//     stream listener
//
// Transport negotiation (TLS, compression, ...) happens later, per
// connection, and is independent of the listener chosen here.
package transport

import (
	"fmt"
	"net"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/transport/tcp"
	"dominicbreuker/tcpserver/pkg/transport/udp"
)

// Options tune listener creation.
type Options struct {
	ReusePort bool
	Deps      *config.Dependencies
}

// Listen binds addr with the listener for proto.
func Listen(proto config.Protocol, addr string, opts Options) (net.Listener, error) {
	switch proto {
	case config.ProtoUDP:
		l, err := udp.NewListener(addr, opts.Deps)
		if err != nil {
			return nil, fmt.Errorf("create UDP listener: %w", err)
		}
		return l, nil

	case config.ProtoTCP, "":
		l, err := tcp.NewListener(addr, opts.ReusePort, opts.Deps)
		if err != nil {
			return nil, fmt.Errorf("create TCP listener: %w", err)
		}
		return l, nil

	default:
		return nil, fmt.Errorf("unsupported protocol %q", proto)
	}
}
