// Package connect provides the connect command, which pipes stdin to a
// server and prints what it sends back.
package connect

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"dominicbreuker/tcpserver/cmd/shared"
	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/entrypoint"
	"dominicbreuker/tcpserver/pkg/log"
	"dominicbreuker/tcpserver/pkg/pipeio"
)

// GetCommand returns the connect command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect to a server and relay stdin/stdout",
		ArgsUsage: "host:port",
		Action:    run,
		Flags:     shared.GetCommonFlags(),
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one argument host:port, got %d", cmd.Args().Len())
	}

	cfg := newConfig(cmd)
	if err := shared.ReportValidation(config.Validate(cfg)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	shared.SetupSignalHandling(cancel)

	if err := entrypoint.Connect(ctx, cfg, pipeio.NewStdio(nil, nil)); err != nil {
		return err
	}
	if cmd.Bool(shared.VerboseFlag) {
		log.InfoMsg("Connection to %s closed\n", cfg.Addr)
	}
	return nil
}

func newConfig(cmd *cli.Command) *config.Client {
	return &config.Client{
		Addr:      cmd.Args().First(),
		Protocol:  config.Protocol(cmd.String(shared.ProtocolFlag)),
		SSL:       cmd.Bool(shared.SSLFlag),
		Key:       cmd.String(shared.KeyFlag),
		Compress:  cmd.Bool(shared.CompressFlag),
		Mux:       cmd.Bool(shared.MuxFlag),
		WebSocket: cmd.Bool(shared.WebSocketFlag),
		Timeout:   shared.Timeout(cmd),
	}
}
