// Package stream defines the logical duplex stream produced by transport
// negotiation and splits it into independently owned read and write halves.
package stream

import (
	"io"
	"sync"
	"sync/atomic"
)

// Stream is a logical duplex byte stream.
//
// Implementations may additionally provide CloseWrite() error to half-close
// the outbound direction and Flush() error to push buffered bytes out.
// net.Conn, *tls.Conn and yamux streams all qualify.
type Stream interface {
	io.ReadWriteCloser
}

type closeWriter interface {
	CloseWrite() error
}

type flusher interface {
	Flush() error
}

// shared tracks how many halves still reference the stream and closes it
// once both are released.
type shared struct {
	s        Stream
	refs     atomic.Int32
	closeErr error
	once     sync.Once
}

func (sh *shared) release() error {
	if sh.refs.Add(-1) == 0 {
		sh.once.Do(func() { sh.closeErr = sh.s.Close() })
		return sh.closeErr
	}
	return nil
}

// forceClose closes the stream regardless of the remaining references.
func (sh *shared) forceClose() error {
	sh.once.Do(func() { sh.closeErr = sh.s.Close() })
	return sh.closeErr
}

// Split returns the read and write halves of s. The halves may be used
// concurrently from different goroutines. s is closed once both halves
// have been released.
func Split(s Stream) (*ReadHalf, *WriteHalf) {
	sh := &shared{s: s}
	sh.refs.Store(2)
	return &ReadHalf{sh: sh}, &WriteHalf{sh: sh}
}

// ReadHalf is the inbound side of a split stream.
type ReadHalf struct {
	sh       *shared
	released atomic.Bool
}

// Read reads from the underlying stream.
func (r *ReadHalf) Read(p []byte) (int, error) {
	if r.released.Load() {
		return 0, io.ErrClosedPipe
	}
	return r.sh.s.Read(p)
}

// Close releases the read side. It is safe to call more than once.
func (r *ReadHalf) Close() error {
	if !r.released.CompareAndSwap(false, true) {
		return nil
	}
	return r.sh.release()
}

// WriteHalf is the outbound side of a split stream. It is not safe for
// concurrent use; see peer.Peer for a serialized owner.
type WriteHalf struct {
	sh       *shared
	released bool
}

// Write writes to the underlying stream.
func (w *WriteHalf) Write(p []byte) (int, error) {
	if w.released {
		return 0, io.ErrClosedPipe
	}
	return w.sh.s.Write(p)
}

// Flush pushes buffered bytes to the transport. Streams that do not buffer
// make this a no-op.
func (w *WriteHalf) Flush() error {
	if w.released {
		return io.ErrClosedPipe
	}
	if f, ok := w.sh.s.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Shutdown ends the outbound direction and releases the write side.
// Streams without CloseWrite are closed entirely, which also ends pending
// reads on the read half. Calling Shutdown again is a no-op.
func (w *WriteHalf) Shutdown() error {
	if w.released {
		return nil
	}
	w.released = true

	var err error
	if cw, ok := w.sh.s.(closeWriter); ok {
		err = cw.CloseWrite()
	} else {
		err = w.sh.forceClose()
	}

	if rerr := w.sh.release(); err == nil {
		err = rerr
	}
	return err
}
