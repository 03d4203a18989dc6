// Package version provides the version command.
package version

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X ...".
var Version = "unknown"

// GetCommand returns the version command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the program version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			_, err := fmt.Fprintf(w, "tcpserver %s\n", Version)
			return err
		},
	}
}
