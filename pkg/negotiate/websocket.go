package negotiate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"dominicbreuker/tcpserver/pkg/stream"
)

// WebSocket returns a negotiator that answers an HTTP upgrade request on
// the raw connection and hands the resulting binary WebSocket to the
// handler as a byte stream. A positive timeout bounds the upgrade.
func WebSocket(timeout time.Duration) Negotiator {
	return func(ctx context.Context, conn net.Conn) (stream.Stream, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		type result struct {
			ws  *websocket.Conn
			err error
		}
		resCh := make(chan result, 1)

		// the request context ends with ServeHTTP, the stream must outlive it
		connCtx := context.WithoutCancel(ctx)

		l := newSingleConnListener(conn)
		srv := &http.Server{
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
					Subprotocols: []string{"bin"},
				})
				select {
				case resCh <- result{ws: c, err: err}:
				default:
					if c != nil {
						_ = c.CloseNow()
					}
				}
			}),
			ConnState: func(_ net.Conn, state http.ConnState) {
				if state != http.StateClosed {
					return
				}
				select {
				case resCh <- result{err: errNotUpgraded}:
				default:
				}
			},
			ReadHeaderTimeout: timeout,
		}

		go func() { _ = srv.Serve(l) }()

		var res result
		select {
		case res = <-resCh:
		case <-ctx.Done():
			res.err = ctx.Err()
		}

		// hijacked connections are no longer tracked by the server
		_ = srv.Close()

		if res.err != nil {
			return nil, fmt.Errorf("websocket.Accept(): %w", res.err)
		}

		return websocket.NetConn(connCtx, res.ws, websocket.MessageBinary), nil
	}
}

// DialWebSocket performs the client side of the upgrade over an existing
// connection.
func DialWebSocket(ctx context.Context, conn net.Conn) (net.Conn, error) {
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(context.Context, string, string) (net.Conn, error) {
				return conn, nil
			},
		},
	}

	c, _, err := websocket.Dial(ctx, "ws://"+conn.RemoteAddr().String()+"/", &websocket.DialOptions{
		HTTPClient:   client,
		Subprotocols: []string{"bin"},
	})
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial(): %w", err)
	}

	return websocket.NetConn(context.WithoutCancel(ctx), c, websocket.MessageBinary), nil
}

// singleConnListener yields one connection, then blocks until closed.
type singleConnListener struct {
	conn   net.Conn
	once   sync.Once
	mu     sync.Mutex
	closed chan struct{}
	taken  bool
}

func newSingleConnListener(conn net.Conn) *singleConnListener {
	return &singleConnListener{conn: conn, closed: make(chan struct{})}
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	if !l.taken {
		l.taken = true
		l.mu.Unlock()
		return l.conn, nil
	}
	l.mu.Unlock()

	<-l.closed
	return nil, net.ErrClosed
}

func (l *singleConnListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *singleConnListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

var errNotUpgraded = errors.New("connection was not upgraded")

var _ net.Listener = (*singleConnListener)(nil)
