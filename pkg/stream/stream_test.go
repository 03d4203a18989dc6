package stream

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
)

type fakeStream struct {
	bytes.Buffer
	closes      int
	closeWrites int
	flushes     int
}

func (f *fakeStream) Close() error {
	f.closes++
	return nil
}

type halfClosingStream struct {
	fakeStream
}

func (h *halfClosingStream) CloseWrite() error {
	h.closeWrites++
	return nil
}

func (h *halfClosingStream) Flush() error {
	h.flushes++
	return nil
}

func TestSplit_ClosesOnceBothReleased(t *testing.T) {
	t.Parallel()

	s := &halfClosingStream{}
	r, w := Split(s)

	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v, want nil", err)
	}
	if s.closeWrites != 1 {
		t.Errorf("CloseWrite calls = %d, want 1", s.closeWrites)
	}
	if s.closes != 0 {
		t.Errorf("stream closed after write side only: closes = %d, want 0", s.closes)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("ReadHalf.Close() error = %v, want nil", err)
	}
	if s.closes != 1 {
		t.Errorf("closes = %d, want 1", s.closes)
	}

	// repeated releases change nothing
	_ = r.Close()
	_ = w.Shutdown()
	if s.closes != 1 || s.closeWrites != 1 {
		t.Errorf("after repeated release closes = %d, closeWrites = %d, want 1, 1", s.closes, s.closeWrites)
	}
}

func TestSplit_ShutdownWithoutCloseWrite(t *testing.T) {
	t.Parallel()

	s := &fakeStream{}
	r, w := Split(s)

	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v, want nil", err)
	}
	if s.closes != 1 {
		t.Errorf("closes = %d, want 1 (full close fallback)", s.closes)
	}

	_ = r.Close()
	if s.closes != 1 {
		t.Errorf("closes = %d after read release, want 1", s.closes)
	}
}

func TestWriteHalf_AfterShutdown(t *testing.T) {
	t.Parallel()

	r, w := Split(&halfClosingStream{})
	defer r.Close()

	_ = w.Shutdown()

	if _, err := w.Write([]byte("x")); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Write() after Shutdown error = %v, want %v", err, io.ErrClosedPipe)
	}
	if err := w.Flush(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Flush() after Shutdown error = %v, want %v", err, io.ErrClosedPipe)
	}
}

func TestWriteHalf_Flush(t *testing.T) {
	t.Parallel()

	buffered := &halfClosingStream{}
	_, w := Split(buffered)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v, want nil", err)
	}
	if buffered.flushes != 1 {
		t.Errorf("flushes = %d, want 1", buffered.flushes)
	}

	_, plain := Split(&fakeStream{})
	if err := plain.Flush(); err != nil {
		t.Errorf("Flush() on unbuffered stream error = %v, want nil", err)
	}
}

func TestReadHalf_AfterClose(t *testing.T) {
	t.Parallel()

	s := &fakeStream{}
	s.WriteString("data")
	r, _ := Split(s)

	_ = r.Close()
	if _, err := r.Read(make([]byte, 4)); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Read() after Close error = %v, want %v", err, io.ErrClosedPipe)
	}
}

func TestSplit_TCPHalfClose(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer client.Close()

	conn, ok := <-accepted
	if !ok {
		t.Fatal("Accept() failed")
	}

	r, w := Split(conn)
	if _, err := w.Write([]byte("ping")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// client sees the bytes, then EOF, yet can still write back
	got, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	if string(got) != "ping" {
		t.Errorf("client read %q, want %q", got, "ping")
	}

	if _, err := client.Write([]byte("pong")); err != nil {
		t.Fatalf("client Write() error = %v", err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(buf) != "pong" {
		t.Errorf("server read %q, want %q", buf, "pong")
	}

	_ = r.Close()
}
