package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
)

// Handle refers to a running accept loop.
type Handle struct {
	listener net.Listener
	done     chan struct{}
	err      error

	stopping atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

func newHandle(l net.Listener) *Handle {
	return &Handle{
		listener: l,
		done:     make(chan struct{}),
	}
}

func (h *Handle) finish(err error) {
	// the loop may have ended on its own; release the socket either way
	_ = h.listener.Close()
	h.err = err
	close(h.done)
}

// Addr returns the address the loop accepts on.
func (h *Handle) Addr() net.Addr {
	return h.listener.Addr()
}

// Done is closed when the accept loop has ended.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the accept loop ends and returns the Accept error that
// ended it, or nil if it was stopped deliberately.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Stop closes the listener, ending the accept loop. Connections already
// being served are not affected. Stop is safe to call more than once.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		h.stopping.Store(true)
		if err := h.listener.Close(); err != nil && !isClosed(err) {
			h.stopErr = err
		}
	})
	return h.stopErr
}

// isClosed reports errors from closing an already closed listener.
func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
