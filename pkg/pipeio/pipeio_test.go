package pipeio

import (
	"bytes"
	"io"
	"net"
	"os"
	"testing"
	"time"
)

type localEnd struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (l *localEnd) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *localEnd) Write(p []byte) (int, error) { return l.out.Write(p) }
func (l *localEnd) Close() error                { return nil }

func TestRelay_Echo(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = io.Copy(c, c)
		_ = c.(*net.TCPConn).CloseWrite()
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer conn.Close()

	payload := bytes.Repeat([]byte("line\n"), 1000)
	local := &localEnd{in: bytes.NewReader(payload)}

	done := make(chan error, 1)
	go func() { done <- Relay(conn, local) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Relay() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Relay() did not return")
	}

	if !bytes.Equal(local.out.Bytes(), payload) {
		t.Errorf("relayed %d bytes, want %d identical bytes", local.out.Len(), len(payload))
	}
}

type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (f *flushCounter) Flush() error {
	f.flushes++
	return nil
}

func TestFlushWriter(t *testing.T) {
	t.Parallel()

	fc := &flushCounter{}
	fw := &flushWriter{w: fc}

	for _, s := range []string{"a", "bc"} {
		if _, err := fw.Write([]byte(s)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if fc.String() != "abc" {
		t.Errorf("written = %q, want %q", fc.String(), "abc")
	}
	if fc.flushes != 2 {
		t.Errorf("flushes = %d, want 2", fc.flushes)
	}
}

func TestStdio(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer r.Close()
	defer w.Close()

	var out bytes.Buffer
	stdio := NewStdio(r, &out)

	if _, err := w.Write([]byte("typed")); err != nil {
		t.Fatalf("pipe Write() error = %v", err)
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(stdio, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(buf) != "typed" {
		t.Errorf("Read() = %q, want %q", buf, "typed")
	}

	if _, err := stdio.Write([]byte("shown")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if out.String() != "shown" {
		t.Errorf("stdout = %q, want %q", out.String(), "shown")
	}

	if err := stdio.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
