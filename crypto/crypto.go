package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// RandomData returns size bytes of random data.
func RandomData(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.New("size cannot be negative")
	}

	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, fmt.Errorf("failed generating random data: %w", err)
	}

	return data, nil
}

// NewSecret returns a new random secret of KeySize bytes, encoded as base58.
func NewSecret() (string, error) {
	data, err := RandomData(KeySize)
	if err != nil {
		return "", err
	}

	return base58.Encode(data), nil
}

// DecodeSecret decodes a base58 secret created by NewSecret.
func DecodeSecret(secret string) ([]byte, error) {
	data, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("failed decoding secret: %w", err)
	}
	if len(data) < KeySize {
		return nil, fmt.Errorf("secret must be at least %d bytes long, got %d", KeySize, len(data))
	}

	return data, nil
}
