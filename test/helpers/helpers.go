// Package helpers provides common utilities for integration tests.
package helpers

import (
	mocks_tcp "dominicbreuker/tcpserver/mocks/tcp"
	"dominicbreuker/tcpserver/pkg/config"
)

// Setup bundles a mock network with server and client configs wired to it.
type Setup struct {
	Network   *mocks_tcp.MockTCPNetwork
	ServerCfg *config.Server
	ClientCfg *config.Client
}

// ServerAddr is where the mocked server listens.
const ServerAddr = "127.0.0.1:12345"

// SetupMockNetwork returns plain server and client configs that talk over an
// in-memory network instead of real sockets.
func SetupMockNetwork() *Setup {
	network := mocks_tcp.NewMockTCPNetwork()
	deps := &config.Dependencies{
		TCPDialer:   network.DialTCP,
		TCPListener: network.ListenTCP,
	}

	return &Setup{
		Network: network,
		ServerCfg: &config.Server{
			Host:     "127.0.0.1",
			Port:     12345,
			Protocol: config.ProtoTCP,
			Deps:     deps,
		},
		ClientCfg: &config.Client{
			Addr:     ServerAddr,
			Protocol: config.ProtoTCP,
			Deps:     deps,
		},
	}
}
