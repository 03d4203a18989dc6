// Package server implements an asynchronous TCP server with pluggable
// transport negotiation.
//
// A Server owns its listening socket until Start moves it into the accept
// loop. For every accepted connection the loop consults the connect
// filter, then serves the connection in its own goroutine: negotiate the
// transport, split the stream, wrap the write half in a peer.Peer and run
// the handler on the read half. When the handler returns, the peer is
// disconnected. Failures of a single connection are logged and never stop
// the loop; only an Accept error does.
//
// The server keeps no registry of live connections: stopping it ends the
// accept loop but leaves already dispatched connections running.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"

	"dominicbreuker/tcpserver/pkg/log"
	"dominicbreuker/tcpserver/pkg/negotiate"
	"dominicbreuker/tcpserver/pkg/peer"
	"dominicbreuker/tcpserver/pkg/stream"
)

// Handler serves one negotiated connection. It owns r exclusively and may
// share p with other goroutines. token is the value passed to Start.
// Returning ends the connection; an error is logged.
type Handler[T any] func(ctx context.Context, r *stream.ReadHalf, p *peer.Peer, token T) error

// ConnectFilter decides whether a connection from addr is served.
type ConnectFilter func(addr net.Addr) bool

// State is the lifecycle stage of a Server.
type State int

const (
	// Idle servers hold their listener and can be started.
	Idle State = iota
	// Running servers have an active accept loop.
	Running
	// Stopped servers have finished their accept loop.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Server accepts connections and dispatches them to its handler.
// Create one with a Builder.
type Server[T any] struct {
	mu       sync.Mutex
	listener net.Listener // nil once taken by Start
	running  *Handle

	addr       net.Addr
	filter     ConnectFilter
	negotiator negotiate.Negotiator
	handler    Handler[T]
	logger     *log.Logger
}

// Addr returns the address the server is bound to.
func (s *Server[T]) Addr() net.Addr {
	return s.addr
}

// State reports whether the server is idle, running or stopped.
func (s *Server[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.listener != nil:
		return Idle
	case s.running == nil:
		return Stopped
	}

	select {
	case <-s.running.Done():
		return Stopped
	default:
		return Running
	}
}

// Start runs the accept loop in the background and returns its handle.
// The listener can be taken only once; later calls fail with
// ErrAlreadyStarted. Cancelling ctx stops the loop like Handle.Stop.
// token is handed unchanged to every handler invocation.
func (s *Server[T]) Start(ctx context.Context, token T) (*Handle, error) {
	s.mu.Lock()
	l := s.listener
	s.listener = nil
	if l == nil {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	h := newHandle(l)
	s.running = h
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = h.Stop()
		case <-h.done:
		}
	}()

	go func() {
		h.finish(s.acceptLoop(ctx, h, token))
	}()

	return h, nil
}

// StartBlock starts the server and waits for the accept loop to end.
func (s *Server[T]) StartBlock(ctx context.Context, token T) error {
	h, err := s.Start(ctx, token)
	if err != nil {
		return err
	}
	return h.Wait()
}

func (s *Server[T]) acceptLoop(ctx context.Context, h *Handle, token T) error {
	s.logger.VerboseMsg("Accepting connections on %s", s.addr)

	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.stopping.Load() {
				s.logger.VerboseMsg("Listener on %s closed", s.addr)
				return nil
			}
			return fmt.Errorf("Accept(): %w", err)
		}

		addr := conn.RemoteAddr()
		if s.filter != nil && !s.filter(addr) {
			s.logger.WarnMsg("Rejected connection from %s\n", addr)
			_ = conn.Close()
			continue
		}

		s.logger.VerboseMsg("New connection from %s", addr)
		go s.serveConn(ctx, conn, token)
	}
}

// serveConn negotiates the transport, runs the handler and tears the peer
// down. Nothing it does can affect the accept loop.
func (s *Server[T]) serveConn(ctx context.Context, conn net.Conn, token T) {
	addr := conn.RemoteAddr()

	st, err := s.negotiate(ctx, conn)
	if err != nil {
		s.logger.WarnMsg("Init stream for %s: %s\n", addr, err)
		_ = conn.Close()
		return
	}

	r, w := stream.Split(st)
	p := peer.New(addr, w, s.logger)

	if err := s.runHandler(ctx, r, p, token); err != nil {
		s.logger.ErrorMsg("Handling %s: %s\n", addr, err)
	}

	_ = p.Disconnect()
	_ = r.Close()
	s.logger.VerboseMsg("Connection from %s closed", addr)
}

func (s *Server[T]) negotiate(ctx context.Context, conn net.Conn) (st stream.Stream, err error) {
	defer func() {
		if r := recover(); r != nil {
			st, err = nil, fmt.Errorf("negotiator panic: %v", r)
			s.logger.VerboseMsg("%s", debug.Stack())
		}
	}()

	st, err = s.negotiator(ctx, conn)
	if err == nil && st == nil {
		err = errors.New("negotiator returned no stream")
	}
	return st, err
}

func (s *Server[T]) runHandler(ctx context.Context, r *stream.ReadHalf, p *peer.Peer, token T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
			s.logger.VerboseMsg("%s", debug.Stack())
		}
	}()

	return s.handler(ctx, r, p, token)
}
