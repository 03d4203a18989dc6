package entrypoint

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/crypto"
	"dominicbreuker/tcpserver/pkg/negotiate"
	"dominicbreuker/tcpserver/pkg/pipeio"
	"dominicbreuker/tcpserver/pkg/transport/udp"
)

// Connect dials the server described by cfg, performs the client side of
// the negotiation stack and relays local until either side closes.
func Connect(ctx context.Context, cfg *config.Client, local io.ReadWriteCloser) error {
	conn, err := Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := pipeio.Relay(conn, local); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	return nil
}

// Dial connects to cfg.Addr and applies, in server order, TLS, mux or
// websocket, and compression.
func Dial(ctx context.Context, cfg *config.Client) (net.Conn, error) {
	conn, err := dialRaw(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := upgrade(ctx, cfg, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func dialRaw(ctx context.Context, cfg *config.Client) (net.Conn, error) {
	if cfg.Protocol == config.ProtoUDP {
		conn, err := udp.Dial(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("udp.Dial(%s): %w", cfg.Addr, err)
		}
		return conn, nil
	}

	if dial := config.GetTCPDialerFunc(cfg.Deps); dial != nil {
		raddr, err := net.ResolveTCPAddr("tcp", cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("net.ResolveTCPAddr(%s): %w", cfg.Addr, err)
		}
		conn, err := dial("tcp", nil, raddr)
		if err != nil {
			return nil, fmt.Errorf("DialTCP(%s): %w", cfg.Addr, err)
		}
		return conn, nil
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("net.Dial(%s): %w", cfg.Addr, err)
	}
	return conn, nil
}

func upgrade(ctx context.Context, cfg *config.Client, conn net.Conn) (net.Conn, error) {
	var err error

	if cfg.SSL {
		conn, err = dialTLS(ctx, cfg, conn)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.Mux:
		conn, err = negotiate.OpenMuxClient(conn)
		if err != nil {
			return nil, err
		}
	case cfg.WebSocket:
		conn, err = negotiate.DialWebSocket(ctx, conn)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Compress {
		conn, err = negotiate.NewCompressedClient(conn)
		if err != nil {
			return nil, err
		}
	}

	return conn, nil
}

func dialTLS(ctx context.Context, cfg *config.Client, conn net.Conn) (net.Conn, error) {
	tlsCfg, err := crypto.ClientConfig(cfg.GetKey())
	if err != nil {
		return nil, fmt.Errorf("crypto.ClientConfig(): %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	tlsConn := tls.Client(conn, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return tlsConn, nil
}
