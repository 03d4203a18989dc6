package crypto

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
)

// GenerateRandomString returns a random URL-safe string of the given length.
func GenerateRandomString(length int) (string, error) {
	return generateRandomString(length, rand.Reader)
}

func generateRandomString(length int, rng io.Reader) (string, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(rng, b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

// getRandReader returns a deterministic stream for a non-empty seed and
// crypto/rand otherwise.
func getRandReader(seed string) io.Reader {
	if seed == "" {
		return rand.Reader
	}
	return newDRand(seed)
}

func newDRand(seed string) io.Reader {
	return &dRand{next: []byte(seed)}
}

// dRand is a hash chain: each block is the upper half of sha512 over the
// lower half of the previous one.
type dRand struct {
	next []byte
}

func (d *dRand) cycle() []byte {
	result := sha512.Sum512(d.next)
	d.next = result[:sha512.Size/2]
	return result[sha512.Size/2:]
}

func (d *dRand) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		out := d.cycle()
		n += copy(b[n:], out)
	}
	return n, nil
}
