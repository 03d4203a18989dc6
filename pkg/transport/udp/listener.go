// Package udp provides a stream listener running KCP over UDP.
package udp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	kcp "github.com/xtaci/kcp-go/v5"

	"dominicbreuker/tcpserver/pkg/config"
)

// Listener accepts KCP sessions configured for stream use.
type Listener struct {
	kcpListener *kcp.Listener
	conn        net.PacketConn // not owned by kcpListener when passed to ServeConn
}

// NewListener creates a KCP listener on the specified UDP address.
// The deps parameter is optional and can be nil to use default implementations.
func NewListener(addr string, deps *config.Dependencies) (*Listener, error) {
	if _, err := net.ResolveUDPAddr("udp", addr); err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	packetConnFn := config.GetPacketListenerFunc(deps)
	conn, err := packetConnFn("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen(udp, %s): %w", addr, err)
	}

	// no block cipher and no FEC; encryption belongs to negotiation
	kcpListener, err := kcp.ServeConn(nil, 0, 0, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("kcp.ServeConn(): %w", err)
	}

	return &Listener{kcpListener: kcpListener, conn: conn}, nil
}

// Accept waits for the next KCP session. A closed listener yields
// net.ErrClosed.
func (l *Listener) Accept() (net.Conn, error) {
	sess, err := l.kcpListener.AcceptKCP()
	if err != nil {
		if errors.Is(err, io.ErrClosedPipe) ||
			strings.Contains(err.Error(), "use of closed network connection") {
			return nil, fmt.Errorf("AcceptKCP(): %w", net.ErrClosed)
		}
		return nil, fmt.Errorf("AcceptKCP(): %w", err)
	}

	Configure(sess)
	return sess, nil
}

// Close stops the listener.
func (l *Listener) Close() error {
	err := l.kcpListener.Close()
	if cerr := l.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Addr returns the local UDP address.
func (l *Listener) Addr() net.Addr {
	return l.kcpListener.Addr()
}

// Configure applies the stream tuning shared by both ends of a session.
func Configure(sess *kcp.UDPSession) {
	sess.SetNoDelay(1, 10, 2, 1)
	sess.SetStreamMode(true)
	sess.SetWindowSize(1024, 1024)
}

// Dial opens a KCP session to addr with the same tuning as the listener.
func Dial(addr string) (net.Conn, error) {
	sess, err := kcp.DialWithOptions(addr, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("kcp.DialWithOptions(%s): %w", addr, err)
	}

	Configure(sess)
	return sess, nil
}

var _ net.Listener = (*Listener)(nil)
