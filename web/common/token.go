package common

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mr-tron/base58"

	"go.hackfix.me/bulletin/crypto"
)

// SessionCookie is the name of the cookie that carries the session token.
const SessionCookie = "AUTH"

// sessionKeyInfo separates the session signing key from other keys derived
// from the same secret.
var sessionKeyInfo = []byte("bulletin session token")

// Session is the data carried by a session token.
type Session struct {
	User      string
	ExpiresAt time.Time
}

// SessionKey derives the session token signing key from the application
// secret.
func SessionKey(secret []byte) (*[crypto.KeySize]byte, error) {
	return crypto.DeriveKey(secret, sessionKeyInfo)
}

// ParseSessionSecret derives the session token signing key from a base58
// encoded application secret.
func ParseSessionSecret(secret string) (*[crypto.KeySize]byte, error) {
	data, err := crypto.DecodeSecret(secret)
	if err != nil {
		return nil, err //nolint:wrapcheck // The error is descriptive enough.
	}

	return SessionKey(data)
}

// EncodeToken returns the signed token for s. The token is the base58
// encoding of the expiration Unix time, the user name and the signature.
func EncodeToken(s Session, key *[crypto.KeySize]byte) (string, error) {
	if s.User == "" {
		return "", errors.New("empty user name")
	}
	if !utf8.ValidString(s.User) {
		return "", errors.New("user name is not valid UTF-8")
	}

	payload := binary.BigEndian.AppendUint64(nil, uint64(s.ExpiresAt.Unix()))
	payload = append(payload, s.User...)
	sig := crypto.Sign(payload, key)

	return base58.Encode(append(payload, sig...)), nil
}

// DecodeToken verifies token and returns the session it carries. It returns
// ErrInvalidToken if the token is malformed or its signature doesn't match,
// and ErrExpiredToken if it expired before now.
func DecodeToken(token string, key *[crypto.KeySize]byte, now time.Time) (*Session, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	data, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	// expiration + at least one byte of user name + signature
	if len(data) < 8+1+crypto.KeySize {
		return nil, fmt.Errorf("%w: token is too short", ErrInvalidToken)
	}

	payload, sig := data[:len(data)-crypto.KeySize], data[len(data)-crypto.KeySize:]
	if !crypto.Verify(payload, sig, key) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	s := &Session{
		//nolint:gosec // The value was written by EncodeToken.
		ExpiresAt: time.Unix(int64(binary.BigEndian.Uint64(payload[:8])), 0).UTC(),
		User:      string(payload[8:]),
	}
	if !s.ExpiresAt.After(now) {
		return nil, ErrExpiredToken
	}

	return s, nil
}
