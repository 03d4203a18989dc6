// Package entrypoint wires configuration into a running echo server or a
// client session, keeping that logic out of the CLI layer.
package entrypoint

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/negotiate"
	"dominicbreuker/tcpserver/pkg/server"
)

// Serve runs an echo server for cfg until ctx is cancelled or accepting
// fails.
func Serve(ctx context.Context, cfg *config.Server) error {
	s, err := NewEchoServer(cfg)
	if err != nil {
		return err
	}

	cfg.Logger.InfoMsg("Listening on %s\n", s.Addr())

	stats := &Stats{}
	defer func() {
		cfg.Logger.InfoMsg("Served %d connections, echoed %d bytes\n", stats.Connections.Load(), stats.Bytes.Load())
	}()

	if err := s.StartBlock(ctx, stats); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// NewEchoServer builds, but does not start, the echo server described by cfg.
func NewEchoServer(cfg *config.Server) (*server.Server[*Stats], error) {
	n, err := BuildNegotiator(cfg)
	if err != nil {
		return nil, err
	}

	b := server.NewBuilder[*Stats](cfg.Addr()).
		Logger(cfg.Logger).
		Protocol(cfg.Protocol).
		ReusePort(cfg.ReusePort).
		Dependencies(cfg.Deps).
		Negotiator(n).
		Handler(Echo)

	if len(cfg.Deny) > 0 {
		b.ConnectFilter(DenyFilter(cfg.Deny))
	}

	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	return s, nil
}

// BuildNegotiator stacks the negotiators selected in cfg: TLS first, then
// mux or websocket, then compression, with traffic logging outermost.
func BuildNegotiator(cfg *config.Server) (negotiate.Negotiator, error) {
	var stages []negotiate.Negotiator

	if cfg.SSL {
		n, err := negotiate.TLSWithKey(cfg.GetKey(), cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("TLS negotiator: %w", err)
		}
		stages = append(stages, n)
	}

	switch {
	case cfg.Mux:
		stages = append(stages, negotiate.Mux(cfg.Timeout))
	case cfg.WebSocket:
		stages = append(stages, negotiate.WebSocket(cfg.Timeout))
	}

	if cfg.Compress {
		stages = append(stages, negotiate.Compress())
	}

	var n negotiate.Negotiator
	switch len(stages) {
	case 0:
		n = negotiate.Plain
	case 1:
		n = stages[0]
	default:
		n = negotiate.Chain(stages...)
	}

	if cfg.LogFile != "" {
		n = negotiate.Logged(cfg.LogFile, n)
	}

	return n, nil
}

// DenyFilter rejects connections from the listed IPs.
func DenyFilter(ips []string) server.ConnectFilter {
	denied := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if parsed := net.ParseIP(ip); parsed != nil {
			denied[parsed.String()] = true
		}
	}

	return func(addr net.Addr) bool {
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			return true
		}
		if ip := net.ParseIP(host); ip != nil {
			host = ip.String()
		}
		return !denied[host]
	}
}
