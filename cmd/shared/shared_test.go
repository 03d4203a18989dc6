package shared

import (
	"errors"
	"testing"

	"github.com/urfave/cli/v3"
)

func flagNames(flags []cli.Flag) map[string]bool {
	names := make(map[string]bool)
	for _, flag := range flags {
		if n := flag.Names(); len(n) > 0 {
			names[n[0]] = true
		}
	}
	return names
}

func TestGetCommonFlags(t *testing.T) {
	t.Parallel()

	names := flagNames(GetCommonFlags())

	for _, want := range []string{ProtocolFlag, SSLFlag, KeyFlag, CompressFlag, MuxFlag, WebSocketFlag, VerboseFlag, TimeoutFlag} {
		if !names[want] {
			t.Errorf("expected flag %q not found", want)
		}
	}
}

func TestGetServeFlags(t *testing.T) {
	t.Parallel()

	names := flagNames(GetServeFlags())

	for _, want := range []string{HostFlag, PortFlag, LogFileFlag, ReusePortFlag, DenyFlag} {
		if !names[want] {
			t.Errorf("expected flag %q not found", want)
		}
	}
}

func TestFlags_NoDuplicates(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, flag := range append(GetCommonFlags(), GetServeFlags()...) {
		for _, name := range flag.Names() {
			if seen[name] {
				t.Errorf("flag name or alias %q defined twice", name)
			}
			seen[name] = true
		}
	}
}

func TestReportValidation(t *testing.T) {
	t.Parallel()

	if err := ReportValidation(nil); err != nil {
		t.Errorf("ReportValidation(nil) = %v, want nil", err)
	}
	if err := ReportValidation([]error{errors.New("bad port")}); err == nil {
		t.Error("ReportValidation() = nil, want error")
	}
}
