package negotiate

import (
	"context"
	"fmt"
	"net"

	"dominicbreuker/tcpserver/pkg/log"
	"dominicbreuker/tcpserver/pkg/stream"
)

// Logged wraps the result of inner so that all traffic is appended to the
// file at path. The result is not a net.Conn; use it as the last stage.
func Logged(path string, inner Negotiator) Negotiator {
	return func(ctx context.Context, conn net.Conn) (stream.Stream, error) {
		s, err := inner(ctx, conn)
		if err != nil {
			return nil, err
		}

		ls, err := log.NewLoggedStream(s, path)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("enabling logging to %s: %w", path, err)
		}
		return ls, nil
	}
}
