package common

import "errors"

var (
	// ErrInvalidToken is returned when a provided token is malformed, or its
	// signature is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a provided token is valid, but expired.
	ErrExpiredToken = errors.New("expired token")
)
