package version

import (
	"bytes"
	"context"
	"testing"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "version" {
		t.Errorf("command name = %q; want %q", cmd.Name, "version")
	}
	if cmd.Usage == "" {
		t.Error("command usage should not be empty")
	}
	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}
}

func TestVersionCommand_Output(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := GetCommand()
	cmd.Writer = &out

	if err := cmd.Run(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	want := "tcpserver " + Version + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
