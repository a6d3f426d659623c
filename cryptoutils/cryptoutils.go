// Package cryptoutils provides small cryptographic utility helpers shared
// across HyperCrypt's packages: secure random byte generation and
// best-effort memory wiping for sensitive buffers.
package cryptoutils

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("cryptoutils: generating random bytes: %w", err)
	}
	return b, nil
}

// ZeroBytes overwrites the given byte slice with zeros. This is used to
// wipe each segment's plaintext buffer once the segment has been encrypted.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
