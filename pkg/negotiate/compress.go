package negotiate

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/klauspost/compress/zstd"

	"dominicbreuker/tcpserver/pkg/stream"
)

// Compress returns a negotiator that runs the connection through zstd in
// both directions. Written bytes are buffered by the encoder until Flush,
// so handlers must flush the peer after each logical message.
func Compress() Negotiator {
	return func(_ context.Context, conn net.Conn) (stream.Stream, error) {
		enc, err := zstd.NewWriter(conn,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd.NewWriter(): %w", err)
		}

		return &compressedConn{Conn: conn, enc: enc}, nil
	}
}

// NewCompressedClient wraps a dialed connection the same way Compress wraps
// an accepted one.
func NewCompressedClient(conn net.Conn) (net.Conn, error) {
	s, err := Compress()(context.Background(), conn)
	if err != nil {
		return nil, err
	}
	return s.(net.Conn), nil
}

// compressedConn is a net.Conn whose payload is a zstd stream. The decoder
// is created on the first Read: constructing it reads the frame header,
// which must not block negotiation.
type compressedConn struct {
	net.Conn
	enc *zstd.Encoder
	dec *zstd.Decoder

	closeOnce sync.Once
	closeErr  error
	encDone   bool
}

func (c *compressedConn) Read(p []byte) (int, error) {
	if c.dec == nil {
		dec, err := zstd.NewReader(c.Conn, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return 0, fmt.Errorf("zstd.NewReader(): %w", err)
		}
		c.dec = dec
	}
	return c.dec.Read(p)
}

func (c *compressedConn) Write(p []byte) (int, error) {
	return c.enc.Write(p)
}

// Flush emits everything written so far as a complete zstd block.
func (c *compressedConn) Flush() error {
	return c.enc.Flush()
}

// CloseWrite ends the zstd frame and half-closes the transport if possible.
func (c *compressedConn) CloseWrite() error {
	if err := c.finishFrame(); err != nil {
		return err
	}
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

func (c *compressedConn) finishFrame() error {
	if c.encDone {
		return nil
	}
	c.encDone = true
	return c.enc.Close()
}

func (c *compressedConn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.finishFrame()
		if c.dec != nil {
			c.dec.Close()
		}
		c.closeErr = c.Conn.Close()
	})
	return c.closeErr
}
