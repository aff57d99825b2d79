package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Log logs an error using the default slog logger, extracting metadata if it's
// a StructuredError.
func Log(err error) {
	LogWith(slog.Default(), err)
}

// LogWith logs an error with the given logger, extracting metadata if it's a
// StructuredError. Metadata fields are logged in sorted key order, after the
// cause.
func LogWith(logger *slog.Logger, err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		logger.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause.Error()
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	logger.Error(serr.Error(), args...)
}

// RuntimeError is an error that happened while running a command, with an
// optional hint for the user on how to resolve it.
type RuntimeError struct {
	msg   string
	cause error
	hint  string
}

// NewRuntimeError returns a new RuntimeError.
func NewRuntimeError(msg string, cause error, hint string) *RuntimeError {
	return &RuntimeError{msg: msg, cause: cause, hint: hint}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *RuntimeError) Unwrap() error {
	return e.cause
}

// Hint returns the suggestion for resolving the error.
func (e *RuntimeError) Hint() string {
	return e.hint
}

// Errorf logs err, and the hint of a RuntimeError if there is one.
func Errorf(err error) {
	Log(err)

	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.hint != "" {
		slog.Info(rerr.hint)
	}
}
