package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the size in bytes of signing keys and signatures.
const KeySize = 32

// DeriveKey derives a signing key from secret using HKDF-SHA512/256. The info
// value separates keys derived from the same secret for different purposes.
func DeriveKey(secret, info []byte) (*[KeySize]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}

	r := hkdf.New(sha512.New512_256, secret, nil, info)
	key := &[KeySize]byte{}
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("failed deriving key: %w", err)
	}

	return key, nil
}

// Sign returns the HMAC-SHA512/256 signature of data.
func Sign(data []byte, key *[KeySize]byte) []byte {
	h := hmac.New(sha512.New512_256, key[:])
	h.Write(data)
	return h.Sum(nil)
}

// Verify reports whether sig is a valid signature of data, in constant time.
func Verify(data, sig []byte, key *[KeySize]byte) bool {
	return hmac.Equal(Sign(data, key), sig)
}
