// Package serve provides the serve command, which runs an echo server on
// the configured transport stack.
package serve

import (
	"context"

	"github.com/urfave/cli/v3"

	"dominicbreuker/tcpserver/cmd/shared"
	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/entrypoint"
	"dominicbreuker/tcpserver/pkg/log"
)

// GetCommand returns the serve command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run an echo server",
		Action: run,
		Flags:  getFlags(),
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := newConfig(cmd)
	if err := shared.ReportValidation(config.Validate(cfg)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	shared.SetupSignalHandling(cancel)

	return entrypoint.Serve(ctx, cfg)
}

func newConfig(cmd *cli.Command) *config.Server {
	verbose := cmd.Bool(shared.VerboseFlag)

	return &config.Server{
		Host:      cmd.String(shared.HostFlag),
		Port:      int(cmd.Int(shared.PortFlag)),
		Protocol:  config.Protocol(cmd.String(shared.ProtocolFlag)),
		ReusePort: cmd.Bool(shared.ReusePortFlag),
		SSL:       cmd.Bool(shared.SSLFlag),
		Key:       cmd.String(shared.KeyFlag),
		Compress:  cmd.Bool(shared.CompressFlag),
		Mux:       cmd.Bool(shared.MuxFlag),
		WebSocket: cmd.Bool(shared.WebSocketFlag),
		LogFile:   cmd.String(shared.LogFileFlag),
		Deny:      cmd.StringSlice(shared.DenyFlag),
		Timeout:   shared.Timeout(cmd),
		Verbose:   verbose,
		Logger:    log.NewLogger(verbose),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetServeFlags()...)

	return flags
}
