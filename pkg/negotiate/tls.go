package negotiate

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"dominicbreuker/tcpserver/pkg/crypto"
	"dominicbreuker/tcpserver/pkg/stream"
)

// TLS returns a negotiator performing a server-side TLS handshake with cfg.
// A positive timeout bounds the handshake.
func TLS(cfg *tls.Config, timeout time.Duration) Negotiator {
	return func(ctx context.Context, conn net.Conn) (stream.Stream, error) {
		tlsConn := tls.Server(conn, cfg)

		if err := performServerTLSHandshake(ctx, tlsConn, timeout); err != nil {
			return nil, fmt.Errorf("TLS handshake with %s: %w", conn.RemoteAddr(), err)
		}

		return tlsConn, nil
	}
}

// TLSWithKey returns a TLS negotiator using certificates derived from key.
// A non-empty key turns on mutual authentication.
func TLSWithKey(key string, timeout time.Duration) (Negotiator, error) {
	cfg, err := crypto.ServerConfig(key)
	if err != nil {
		return nil, fmt.Errorf("building server TLS config: %w", err)
	}

	return TLS(cfg, timeout), nil
}

// performServerTLSHandshake sets a deadline before the handshake and clears
// it right after, so it cannot fire on the established connection later.
func performServerTLSHandshake(ctx context.Context, tlsConn *tls.Conn, timeout time.Duration) error {
	if timeout > 0 {
		_ = tlsConn.SetDeadline(time.Now().Add(timeout))
	}

	err := tlsConn.HandshakeContext(ctx)

	if timeout > 0 {
		_ = tlsConn.SetDeadline(time.Time{})
	}

	return err
}
