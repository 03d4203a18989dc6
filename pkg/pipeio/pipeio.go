// Package pipeio relays bytes between a local endpoint and a connection.
package pipeio

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// Relay copies local input to conn and conn output to local. When local
// input ends, the outbound side of conn is half-closed and Relay keeps
// reading until the remote side closes too. Streams that buffer writes are
// flushed after every chunk.
func Relay(conn net.Conn, local io.ReadWriteCloser) error {
	sendErr := make(chan error, 1)

	go func() {
		_, err := io.Copy(&flushWriter{w: conn}, local)
		if err != nil {
			sendErr <- fmt.Errorf("io.Copy(conn, local): %w", err)
			return
		}
		sendErr <- closeWrite(conn)
	}()

	_, err := io.Copy(local, conn)
	_ = local.Close() // unblocks the sender if it is stuck reading input
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("io.Copy(local, conn): %w", err)
	}

	select {
	case err := <-sendErr:
		return err
	default:
		return nil
	}
}

func closeWrite(conn net.Conn) error {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			return fmt.Errorf("CloseWrite(): %w", err)
		}
	}
	return nil
}

// flushWriter flushes w after each write if w buffers.
type flushWriter struct {
	w io.Writer
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if fl, ok := f.w.(interface{ Flush() error }); ok {
		if err := fl.Flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}
