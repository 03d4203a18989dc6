// Package config holds the settings of a server run from the command line
// together with their validation.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"dominicbreuker/tcpserver/pkg/log"
)

// Protocol names a listener implementation.
type Protocol string

const (
	// ProtoTCP listens on a TCP socket.
	ProtoTCP Protocol = "tcp"
	// ProtoUDP listens for KCP sessions over UDP.
	ProtoUDP Protocol = "udp"
)

// KeySalt is prepended to user supplied keys before certificates are derived.
var KeySalt = "bn6ySqbg2BgmHaljx3mhg94DOybkBF3G" // overwrite with custom value during release build

// Server is the configuration of a server process.
type Server struct {
	Host      string
	Port      int
	Protocol  Protocol
	ReusePort bool

	SSL       bool
	Key       string
	Compress  bool
	Mux       bool
	WebSocket bool
	LogFile   string

	Deny []string // remote IPs rejected before negotiation

	Timeout time.Duration
	Verbose bool
	Logger  *log.Logger
	Deps    *Dependencies
}

// Addr returns the bind address.
func (c *Server) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetKey returns the salted key, or "" if no key is set.
func (c *Server) GetKey() string {
	if c.Key == "" {
		return ""
	}

	return KeySalt + c.Key
}

// Validate reports every problem with the configuration.
func (c *Server) Validate() []error {
	var errors []error

	if !c.SSL && c.Key != "" {
		errors = append(errors, fmt.Errorf("You must use '--ssl' to use '--key'"))
	}

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("'--port': %s", err))
	}

	switch c.Protocol {
	case ProtoTCP, ProtoUDP, "":
	default:
		errors = append(errors, fmt.Errorf("'--protocol' must be one of tcp, udp; got %q", c.Protocol))
	}

	if c.Mux && c.WebSocket {
		errors = append(errors, fmt.Errorf("'--mux' and '--websocket' cannot be combined"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("'--timeout' must not be negative"))
	}

	for _, d := range c.Deny {
		if net.ParseIP(d) == nil {
			errors = append(errors, fmt.Errorf("'--deny': %q is not an IP address", d))
		}
	}

	return errors
}
