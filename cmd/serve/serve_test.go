package serve

import (
	"context"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"dominicbreuker/tcpserver/pkg/config"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "serve" {
		t.Errorf("command name = %q; want %q", cmd.Name, "serve")
	}
	if cmd.Action == nil {
		t.Error("command action should not be nil")
	}
	if len(cmd.Flags) == 0 {
		t.Error("command flags should not be empty")
	}
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	var got *config.Server
	cmd := &cli.Command{
		Name:  "serve",
		Flags: getFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			got = newConfig(cmd)
			return nil
		},
	}

	args := []string{
		"serve",
		"--host", "127.0.0.1",
		"--port", "9000",
		"--protocol", "udp",
		"--ssl", "--key", "secret",
		"--compress", "--mux",
		"--timeout", "2500",
		"--deny", "10.0.0.1", "--deny", "10.0.0.2",
		"--reuse-port",
	}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if got == nil {
		t.Fatal("action did not run")
	}
	if got.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want %q", got.Addr(), "127.0.0.1:9000")
	}
	if got.Protocol != config.ProtoUDP {
		t.Errorf("Protocol = %q, want %q", got.Protocol, config.ProtoUDP)
	}
	if !got.SSL || got.Key != "secret" || !got.Compress || !got.Mux || got.WebSocket {
		t.Errorf("transport flags = %+v, want ssl, key, compress, mux", got)
	}
	if got.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %v, want 2.5s", got.Timeout)
	}
	if len(got.Deny) != 2 {
		t.Errorf("Deny = %v, want 2 entries", got.Deny)
	}
	if !got.ReusePort {
		t.Error("ReusePort = false, want true")
	}
	if errs := got.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	err := cmd.Run(context.Background(), []string{"serve", "--key", "secret", "--port", "0"})
	if err == nil {
		t.Error("Run() error = nil, want validation failure for --key without --ssl")
	}
}
