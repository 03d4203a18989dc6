// Package crypto generates the certificates used by TLS transport
// negotiation. Peers that share a key derive the same CA and can
// authenticate each other; an empty key yields a throwaway CA.
package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// GenerateCertificates returns a pool holding the CA derived from seed and
// a fresh leaf certificate signed by it. An empty seed picks a random one.
func GenerateCertificates(seed string) (*x509.CertPool, tls.Certificate, error) {
	var cert tls.Certificate
	var err error

	if seed == "" {
		seed, err = GenerateRandomString(32)
		if err != nil {
			return nil, cert, fmt.Errorf("GenerateRandomString(32): %w", err)
		}
	}

	caKey, caCert, err := generateCA(seed)
	if err != nil {
		return nil, cert, fmt.Errorf("generateCA(): %w", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	cert, err = generateCertificate(caKey, caCert)
	if err != nil {
		return nil, cert, fmt.Errorf("generateCertificate(): %w", err)
	}

	return pool, cert, nil
}

// ServerConfig returns a TLS 1.3 server configuration. With a non-empty
// key, clients must present a certificate from the same key.
func ServerConfig(key string) (*tls.Config, error) {
	pool, cert, err := GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("generate certificates: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}

	if key != "" {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		cfg.ClientCAs = pool
	}

	return cfg, nil
}

// ClientConfig returns a TLS 1.3 client configuration. With a non-empty
// key the server certificate is verified against the shared CA and a client
// certificate is presented; otherwise verification is skipped.
func ClientConfig(key string) (*tls.Config, error) {
	pool, cert, err := GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("generate certificates: %w", err)
	}

	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: true,
	}

	if key != "" {
		cfg.Certificates = []tls.Certificate{cert}
		cfg.VerifyPeerCertificate = verifyAgainst(pool)
	}

	return cfg, nil
}

// verifyAgainst checks the chain against pool without hostname matching;
// leaf certificates carry random names.
func verifyAgainst(pool *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("no server certificate")
		}

		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("x509.ParseCertificate(server): %w", err)
		}

		_, err = leaf.Verify(x509.VerifyOptions{
			Roots:     pool,
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		})
		if err != nil {
			return fmt.Errorf("verify server certificate: %w", err)
		}
		return nil
	}
}
