package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"time"
)

var (
	notBefore = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	notAfter  = time.Date(2063, 4, 5, 11, 0, 0, 0, time.UTC)
)

// generateCA derives a CA key and self-signed certificate from seed.
// The same seed always yields the same key and subject, so two processes
// sharing a seed trust each other's leaf certificates.
func generateCA(seed string) (*ecdsa.PrivateKey, *x509.Certificate, error) {
	rng := getRandReader(seed)

	key, err := deriveKey(elliptic.P256(), rng)
	if err != nil {
		return nil, nil, fmt.Errorf("deriveKey(): %w", err)
	}

	cn, err := generateRandomString(8, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generating random common name: %w", err)
	}

	org, err := generateRandomString(8, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("generating random organization: %w", err)
	}

	tmpl := x509.Certificate{
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   cn,
			Organization: []string{org},
		},
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("creating CA certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("x509.ParseCertificate(ca): %w", err)
	}

	return key, cert, nil
}

// deriveKey builds a private key whose scalar comes straight from rng.
// ecdsa.GenerateKey may consume a variable amount of randomness, which
// would break determinism for seeded readers.
func deriveKey(curve elliptic.Curve, rng io.Reader) (*ecdsa.PrivateKey, error) {
	params := curve.Params()
	b := make([]byte, params.BitSize/8+8)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, err
	}

	n := new(big.Int).Sub(params.N, big.NewInt(1))
	d := new(big.Int).SetBytes(b)
	d.Mod(d, n)
	d.Add(d, big.NewInt(1))

	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(d.FillBytes(make([]byte, (params.BitSize+7)/8)))
	return key, nil
}
