package config

import (
	"net"
	"testing"
	"time"
)

func TestServer_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Server
		wantErrs int
	}{
		{"minimal", Server{Port: 8080}, 0},
		{"ephemeral port", Server{Port: 0}, 0},
		{"port too large", Server{Port: 70000}, 1},
		{"negative port", Server{Port: -1}, 1},
		{"key without ssl", Server{Port: 8080, Key: "k"}, 1},
		{"key with ssl", Server{Port: 8080, SSL: true, Key: "k"}, 0},
		{"udp", Server{Port: 8080, Protocol: ProtoUDP}, 0},
		{"unknown protocol", Server{Port: 8080, Protocol: "sctp"}, 1},
		{"mux and websocket", Server{Port: 8080, Mux: true, WebSocket: true}, 1},
		{"negative timeout", Server{Port: 8080, Timeout: -time.Second}, 1},
		{"deny ips", Server{Port: 8080, Deny: []string{"10.0.0.1", "::1"}}, 0},
		{"deny garbage", Server{Port: 8080, Deny: []string{"10.0.0.1", "nope"}}, 1},
		{"everything wrong", Server{Port: -5, Key: "k", Protocol: "x", Mux: true, WebSocket: true}, 4},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			errs := tc.cfg.Validate()
			if len(errs) != tc.wantErrs {
				t.Errorf("Validate() returned %d errors (%v), want %d", len(errs), errs, tc.wantErrs)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	errs := Validate(&Server{Port: 8080}, &Server{Port: -1, Key: "k"})
	if len(errs) != 2 {
		t.Errorf("Validate() returned %d errors, want 2", len(errs))
	}

	if errs := Validate(); len(errs) != 0 {
		t.Errorf("Validate() with no configs returned %d errors, want 0", len(errs))
	}
}

func TestServer_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"127.0.0.1", 80, "127.0.0.1:80"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tc := range tests {
		c := Server{Host: tc.host, Port: tc.port}
		if got := c.Addr(); got != tc.want {
			t.Errorf("Addr() = %q, want %q", got, tc.want)
		}
	}
}

func TestServer_GetKey(t *testing.T) {
	t.Parallel()

	if got := (&Server{}).GetKey(); got != "" {
		t.Errorf("GetKey() = %q, want empty", got)
	}
	if got := (&Server{Key: "abc"}).GetKey(); got != KeySalt+"abc" {
		t.Errorf("GetKey() = %q, want salted key", got)
	}
}

func TestDependencies_Defaults(t *testing.T) {
	t.Parallel()

	if GetTCPListenerFunc(nil) != nil {
		t.Error("GetTCPListenerFunc(nil) != nil, want nil")
	}
	if GetTCPDialerFunc(&Dependencies{}) != nil {
		t.Error("GetTCPDialerFunc(empty) != nil, want nil")
	}
	if GetPacketListenerFunc(nil) == nil {
		t.Error("GetPacketListenerFunc(nil) = nil, want default")
	}

	called := false
	deps := &Dependencies{
		TCPListener: func(string, *net.TCPAddr) (net.Listener, error) {
			called = true
			return nil, nil
		},
	}
	_, _ = GetTCPListenerFunc(deps)("tcp", nil)
	if !called {
		t.Error("GetTCPListenerFunc() did not return the injected function")
	}
}

func TestClient_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Client
		wantErrs int
	}{
		{"valid", Client{Addr: "127.0.0.1:8080"}, 0},
		{"missing port", Client{Addr: "127.0.0.1"}, 1},
		{"key without ssl", Client{Addr: "h:1", Key: "k"}, 1},
		{"bad protocol", Client{Addr: "h:1", Protocol: "icmp"}, 1},
		{"mux and websocket", Client{Addr: "h:1", Mux: true, WebSocket: true}, 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if errs := tc.cfg.Validate(); len(errs) != tc.wantErrs {
				t.Errorf("Validate() returned %d errors (%v), want %d", len(errs), errs, tc.wantErrs)
			}
		})
	}
}
