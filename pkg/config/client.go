package config

import (
	"fmt"
	"net"
	"time"
)

// Client is the configuration of the connect command. Its transport
// settings must match those of the server it talks to.
type Client struct {
	Addr     string
	Protocol Protocol

	SSL       bool
	Key       string
	Compress  bool
	Mux       bool
	WebSocket bool

	Timeout time.Duration
	Deps    *Dependencies
}

// GetKey returns the salted key, or "" if no key is set.
func (c *Client) GetKey() string {
	if c.Key == "" {
		return ""
	}

	return KeySalt + c.Key
}

// Validate reports every problem with the configuration.
func (c *Client) Validate() []error {
	var errors []error

	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		errors = append(errors, fmt.Errorf("address %q: %s", c.Addr, err))
	}

	if !c.SSL && c.Key != "" {
		errors = append(errors, fmt.Errorf("You must use '--ssl' to use '--key'"))
	}

	switch c.Protocol {
	case ProtoTCP, ProtoUDP, "":
	default:
		errors = append(errors, fmt.Errorf("'--protocol' must be one of tcp, udp; got %q", c.Protocol))
	}

	if c.Mux && c.WebSocket {
		errors = append(errors, fmt.Errorf("'--mux' and '--websocket' cannot be combined"))
	}

	return errors
}
