// Package negotiate provides transport negotiators: functions that turn a
// freshly accepted connection into the logical stream the connection
// handler works with.
//
// The server treats a Negotiator as an opaque strategy. Plain leaves the
// connection untouched; TLS, Compress, Mux and WebSocket wrap it; Chain
// stacks several of them. Every built-in negotiator except Logged yields a
// net.Conn, so they can be combined freely in a Chain.
package negotiate

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/tcpserver/pkg/stream"
)

// Negotiator maps a raw accepted connection to a logical stream. It may
// block for as long as the handshake takes; ctx is cancelled when the
// server stops. On error the raw connection is closed by the caller.
type Negotiator func(ctx context.Context, conn net.Conn) (stream.Stream, error)

// Plain is the identity negotiator.
func Plain(_ context.Context, conn net.Conn) (stream.Stream, error) {
	return conn, nil
}

// Chain applies negotiators left to right. Each intermediate result must be
// a net.Conn. If a stage fails, the stream built so far is closed.
func Chain(negotiators ...Negotiator) Negotiator {
	return func(ctx context.Context, conn net.Conn) (stream.Stream, error) {
		var cur stream.Stream = conn

		for i, n := range negotiators {
			c, ok := cur.(net.Conn)
			if !ok {
				_ = cur.Close()
				return nil, fmt.Errorf("stage %d: input %T is not a net.Conn", i, cur)
			}

			next, err := n(ctx, c)
			if err != nil {
				if c != conn {
					_ = c.Close()
				}
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			cur = next
		}

		return cur, nil
	}
}
