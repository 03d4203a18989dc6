package entrypoint

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"dominicbreuker/tcpserver/pkg/peer"
	"dominicbreuker/tcpserver/pkg/stream"
)

// Stats is shared by all connections of one echo server run.
type Stats struct {
	Connections atomic.Int64
	Bytes       atomic.Int64
}

// Echo sends everything it reads back to the peer until the client closes
// its side.
func Echo(_ context.Context, r *stream.ReadHalf, p *peer.Peer, stats *Stats) error {
	stats.Connections.Add(1)

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if err := p.SendAll(buf[:n]); err != nil {
				return err
			}
			if err := p.Flush(); err != nil {
				return err
			}
			stats.Bytes.Add(int64(n))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
