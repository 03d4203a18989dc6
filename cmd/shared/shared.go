// Package shared provides the CLI flag definitions and helpers used by the
// tcpserver commands.
package shared

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"dominicbreuker/tcpserver/pkg/config"
	"dominicbreuker/tcpserver/pkg/log"
)

const categoryCommon = "common"

// ProtocolFlag is the name of the flag selecting tcp or udp.
const ProtocolFlag = "protocol"

// SSLFlag is the name of the flag to enable TLS encryption.
const SSLFlag = "ssl"

// KeyFlag is the name of the flag to specify the mTLS authentication key.
const KeyFlag = "key"

// CompressFlag is the name of the flag enabling zstd compression.
const CompressFlag = "compress"

// MuxFlag is the name of the flag enabling a yamux session.
const MuxFlag = "mux"

// WebSocketFlag is the name of the flag enabling the websocket upgrade.
const WebSocketFlag = "websocket"

// VerboseFlag is the name of the flag to enable verbose error logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag to specify the negotiation timeout in milliseconds.
const TimeoutFlag = "timeout"

// GetCommonFlags returns the transport flags both sides must agree on.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ProtocolFlag,
			Usage:    "Transport protocol: tcp or udp (KCP)",
			Category: categoryCommon,
			Value:    string(config.ProtoTCP),
		},
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Use TLS encryption",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Key for mTLS authentication, leave empty to disable authentication",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     CompressFlag,
			Aliases:  []string{"z"},
			Usage:    "Compress traffic with zstd",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     MuxFlag,
			Usage:    "Run the stream inside a yamux session",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     WebSocketFlag,
			Aliases:  []string{"w"},
			Usage:    "Upgrade the connection to a websocket",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose error logging",
			Category: categoryCommon,
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Negotiation timeout in milliseconds (TLS handshake, mux and websocket setup)",
			Category: categoryCommon,
			Value:    10000,
		},
	}
}

const categoryServe = "serve"

// HostFlag is the name of the flag for the bind host.
const HostFlag = "host"

// PortFlag is the name of the flag for the bind port.
const PortFlag = "port"

// LogFileFlag is the name of the flag to specify a traffic log file.
const LogFileFlag = "log"

// ReusePortFlag is the name of the flag setting SO_REUSEPORT.
const ReusePortFlag = "reuse-port"

// DenyFlag is the name of the flag listing rejected client IPs.
const DenyFlag = "deny"

// GetServeFlags returns the flags specific to the serve command.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     HostFlag,
			Usage:    "Host to bind, empty for all interfaces",
			Category: categoryServe,
			Value:    "",
		},
		&cli.IntFlag{
			Name:     PortFlag,
			Aliases:  []string{"p"},
			Usage:    "Port to bind",
			Category: categoryServe,
			Value:    8080,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Log all traffic to this file",
			Category: categoryServe,
		},
		&cli.BoolFlag{
			Name:     ReusePortFlag,
			Usage:    "Set SO_REUSEPORT on the listening socket",
			Category: categoryServe,
		},
		&cli.StringSliceFlag{
			Name:     DenyFlag,
			Aliases:  []string{"d"},
			Usage:    "Reject connections from this IP, may be repeated",
			Category: categoryServe,
		},
	}
}

// Timeout converts the timeout flag to a duration.
func Timeout(cmd *cli.Command) time.Duration {
	return time.Duration(cmd.Int(TimeoutFlag)) * time.Millisecond
}

// ReportValidation logs every error and returns a single error if there were any.
func ReportValidation(errors []error) error {
	if len(errors) == 0 {
		return nil
	}

	log.ErrorMsg("Argument validation errors:\n")
	for _, err := range errors {
		log.ErrorMsg(" - %s\n", err)
	}
	return fmt.Errorf("exiting")
}
