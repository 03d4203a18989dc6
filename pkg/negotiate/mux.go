package negotiate

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/hashicorp/yamux"

	"dominicbreuker/tcpserver/pkg/stream"
)

// Mux returns a negotiator that runs a yamux server session over the
// connection and hands the first stream opened by the client to the
// handler. A positive timeout bounds the wait for that stream.
func Mux(timeout time.Duration) Negotiator {
	return func(ctx context.Context, conn net.Conn) (stream.Stream, error) {
		sess, err := yamux.Server(conn, muxConfig())
		if err != nil {
			return nil, fmt.Errorf("yamux.Server(conn): %w", err)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		s, err := sess.AcceptStreamWithContext(ctx)
		if err != nil {
			_ = sess.Close()
			return nil, fmt.Errorf("session.Accept(): %w", err)
		}

		return &muxConn{Stream: s, sess: sess}, nil
	}
}

// OpenMuxClient starts a yamux client session on conn and opens the stream
// a Mux negotiator accepts.
func OpenMuxClient(conn net.Conn) (net.Conn, error) {
	sess, err := yamux.Client(conn, muxConfig())
	if err != nil {
		return nil, fmt.Errorf("yamux.Client(conn): %w", err)
	}

	s, err := sess.OpenStream()
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("session.Open(): %w", err)
	}

	return &muxConn{Stream: s, sess: sess}, nil
}

func muxConfig() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = nil
	cfg.Logger = log.New(io.Discard, "", log.LstdFlags) // discard all console logging in yamux
	return cfg
}

// muxConn owns the session of its stream. Closing a yamux stream only
// half-closes it, so that doubles as CloseWrite.
type muxConn struct {
	*yamux.Stream
	sess *yamux.Session

	once sync.Once
	err  error
}

func (m *muxConn) CloseWrite() error {
	return m.Stream.Close()
}

func (m *muxConn) Close() error {
	m.once.Do(func() {
		_ = m.Stream.Close()
		m.err = m.sess.Close()
	})
	return m.err
}
