package transport

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/transport/udp"
	mocks_tcp "dominicbreuker/tcpserver/mocks/tcp"
)

func TestListen_TCP(t *testing.T) {
	t.Parallel()

	l, err := Listen(config.ProtoTCP, "127.0.0.1:0", Options{})
	if err != nil {
		t.Fatalf("Listen() error = %v, want nil", err)
	}
	defer l.Close()

	if _, ok := l.Addr().(*net.TCPAddr); !ok {
		t.Errorf("Addr() type = %T, want *net.TCPAddr", l.Addr())
	}
}

func TestListen_TCPReusePort(t *testing.T) {
	t.Parallel()

	l1, err := Listen(config.ProtoTCP, "127.0.0.1:0", Options{ReusePort: true})
	if err != nil {
		t.Fatalf("Listen() error = %v, want nil", err)
	}
	defer l1.Close()

	l2, err := Listen(config.ProtoTCP, l1.Addr().String(), Options{ReusePort: true})
	if err != nil {
		t.Skipf("second bind with SO_REUSEPORT not supported here: %v", err)
	}
	l2.Close()
}

func TestListen_TCPAddressInUse(t *testing.T) {
	t.Parallel()

	l1, err := Listen(config.ProtoTCP, "127.0.0.1:0", Options{})
	if err != nil {
		t.Fatalf("Listen() error = %v, want nil", err)
	}
	defer l1.Close()

	if l2, err := Listen(config.ProtoTCP, l1.Addr().String(), Options{}); err == nil {
		l2.Close()
		t.Error("second Listen() without reuse port error = nil, want address in use")
	}
}

func TestListen_InvalidAddress(t *testing.T) {
	t.Parallel()

	if _, err := Listen(config.ProtoTCP, "not an address", Options{}); err == nil {
		t.Error("Listen() error = nil, want resolve error")
	}
	if _, err := Listen("sctp", "127.0.0.1:0", Options{}); err == nil {
		t.Error("Listen() error = nil, want unsupported protocol")
	}
}

func TestListen_InjectedTCPListener(t *testing.T) {
	t.Parallel()

	network := mocks_tcp.NewMockTCPNetwork()
	deps := &config.Dependencies{TCPListener: network.ListenTCP}

	l, err := Listen(config.ProtoTCP, "10.1.2.3:9000", Options{Deps: deps})
	if err != nil {
		t.Fatalf("Listen() error = %v, want nil", err)
	}
	defer l.Close()

	if l.Addr().String() != "10.1.2.3:9000" {
		t.Errorf("Addr() = %s, want 10.1.2.3:9000", l.Addr())
	}
}

func TestListen_UDP(t *testing.T) {
	t.Parallel()

	l, err := Listen(config.ProtoUDP, "127.0.0.1:0", Options{})
	if err != nil {
		t.Fatalf("Listen() error = %v, want nil", err)
	}

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err := udp.Dial(l.Addr().String())
	if err != nil {
		t.Fatalf("udp.Dial() error = %v", err)
	}
	defer client.Close()

	// KCP sessions appear on the listener with their first segment
	if _, err := client.Write([]byte("kcp")); err != nil {
		t.Fatalf("client Write() error = %v", err)
	}

	var server net.Conn
	select {
	case server = <-accepted:
		if server == nil {
			t.Fatal("Accept() failed")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Accept() timed out")
	}
	defer server.Close()

	buf := make([]byte, 3)
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatalf("server ReadFull() error = %v", err)
	}
	if string(buf) != "kcp" {
		t.Errorf("server read %q, want %q", buf, "kcp")
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := l.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Errorf("Accept() after Close error = %v, want %v", err, net.ErrClosed)
	}
}
