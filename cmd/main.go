package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"dominicbreuker/tcpserver/cmd/connect"
	"dominicbreuker/tcpserver/cmd/serve"
	"dominicbreuker/tcpserver/cmd/version"
	"dominicbreuker/tcpserver/pkg/log"
)

func main() {
	cmd := &cli.Command{
		Name:  "tcpserver",
		Usage: "TCP server with pluggable transports",
		Commands: []*cli.Command{
			serve.GetCommand(),
			connect.GetCommand(),
			version.GetCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
