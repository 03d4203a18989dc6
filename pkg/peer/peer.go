// Package peer provides the per-connection handle that owns the outbound
// half of a negotiated stream.
//
// Every mutating operation (Send, SendAll, Flush, Disconnect) holds the
// peer's lock for its whole duration, so concurrent callers interleave per
// call and never per byte. There is no internal queue: a slow remote
// reader throttles every sender of that peer.
package peer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"dominicbreuker/tcpserver/pkg/log"
	"dominicbreuker/tcpserver/pkg/stream"
)

// ErrConnectionReset is returned by writes on a disconnected peer.
var ErrConnectionReset = errors.New("connection reset")

// ErrEmptyBuffer is returned when Send is called without data.
var ErrEmptyBuffer = errors.New("send buffer is empty")

// Peer is a connected remote endpoint. It is safe for concurrent use.
type Peer struct {
	addr   net.Addr
	logger *log.Logger

	mu sync.Mutex
	w  *stream.WriteHalf // nil once disconnected
}

// New creates a connected peer owning w. Teardown failures are reported
// through logger, which may be nil.
func New(addr net.Addr, w *stream.WriteHalf, logger *log.Logger) *Peer {
	return &Peer{
		addr:   addr,
		logger: logger,
		w:      w,
	}
}

// Addr returns the remote address captured when the connection was accepted.
func (p *Peer) Addr() net.Addr {
	return p.addr
}

// IsDisconnected reports whether the peer has released its write half.
func (p *Peer) IsDisconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w == nil
}

// Send performs a single write and returns how many bytes were accepted.
func (p *Peer) Send(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrEmptyBuffer
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.w == nil {
		return 0, ErrConnectionReset
	}
	return p.w.Write(b)
}

// SendAll writes the whole buffer, retrying short writes. No other
// operation on this peer runs until it returns.
func (p *Peer) SendAll(b []byte) error {
	if len(b) == 0 {
		return ErrEmptyBuffer
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.w == nil {
		return ErrConnectionReset
	}

	for len(b) > 0 {
		n, err := p.w.Write(b)
		if err != nil {
			return fmt.Errorf("write to %s: %w", p.addr, err)
		}
		if n == 0 {
			return fmt.Errorf("write to %s: %w", p.addr, io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// Flush forces buffered bytes to the transport.
func (p *Peer) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.w == nil {
		return ErrConnectionReset
	}
	return p.w.Flush()
}

// Disconnect shuts down the outbound side and marks the peer disconnected
// for good. It always returns nil; a failing shutdown is logged.
func (p *Peer) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.w == nil {
		return nil
	}

	w := p.w
	p.w = nil

	if err := w.Shutdown(); err != nil {
		p.logger.WarnMsg("Disconnect %s: shutdown: %s\n", p.addr, err)
		return nil
	}
	p.logger.VerboseMsg("Disconnected %s", p.addr)
	return nil
}

// String returns the remote address.
func (p *Peer) String() string {
	if p.addr == nil {
		return "<unknown>"
	}
	return p.addr.String()
}
