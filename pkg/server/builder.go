package server

import (
	"fmt"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/log"
	"dominicbreuker/tcpserver/pkg/negotiate"
	"dominicbreuker/tcpserver/pkg/transport"
)

// Builder assembles a Server. Handler and Negotiator are mandatory; Build
// panics without them.
type Builder[T any] struct {
	addr       string
	proto      config.Protocol
	reusePort  bool
	deps       *config.Dependencies
	filter     ConnectFilter
	negotiator negotiate.Negotiator
	handler    Handler[T]
	logger     *log.Logger
}

// NewBuilder starts a builder for a server bound to addr.
func NewBuilder[T any](addr string) *Builder[T] {
	return &Builder[T]{
		addr:   addr,
		proto:  config.ProtoTCP,
		logger: log.NewLogger(false),
	}
}

// ConnectFilter sets the predicate deciding, before any I/O, whether a
// newly accepted connection is served. By default all are.
func (b *Builder[T]) ConnectFilter(f ConnectFilter) *Builder[T] {
	b.filter = f
	return b
}

// Negotiator sets the transport negotiation applied to every connection,
// e.g. negotiate.Plain or negotiate.TLS.
func (b *Builder[T]) Negotiator(n negotiate.Negotiator) *Builder[T] {
	b.negotiator = n
	return b
}

// Handler sets the function serving each negotiated connection.
func (b *Builder[T]) Handler(h Handler[T]) *Builder[T] {
	b.handler = h
	return b
}

// Logger replaces the default stderr logger. nil silences the server.
func (b *Builder[T]) Logger(l *log.Logger) *Builder[T] {
	b.logger = l
	return b
}

// Protocol selects the listener: config.ProtoTCP (default) or config.ProtoUDP.
func (b *Builder[T]) Protocol(p config.Protocol) *Builder[T] {
	b.proto = p
	return b
}

// ReusePort sets SO_REUSEPORT on TCP listeners.
func (b *Builder[T]) ReusePort(on bool) *Builder[T] {
	b.reusePort = on
	return b
}

// Dependencies injects listener implementations, mainly for tests.
func (b *Builder[T]) Dependencies(deps *config.Dependencies) *Builder[T] {
	b.deps = deps
	return b
}

// Build validates the builder and binds the listener. A missing handler or
// negotiator is a programming error and panics; bind failures are returned
// wrapped in ErrBind.
func (b *Builder[T]) Build() (*Server[T], error) {
	if b.handler == nil {
		panic("server: handler is not set, use Builder.Handler")
	}
	if b.negotiator == nil {
		panic("server: negotiator is not set, use Builder.Negotiator")
	}

	l, err := transport.Listen(b.proto, b.addr, transport.Options{
		ReusePort: b.reusePort,
		Deps:      b.deps,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBind, b.addr, err)
	}

	return &Server[T]{
		listener:   l,
		addr:       l.Addr(),
		filter:     b.filter,
		negotiator: b.negotiator,
		handler:    b.handler,
		logger:     b.logger,
	}, nil
}
