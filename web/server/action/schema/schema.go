// Package schema defines the contract between action pipelines and the
// libraries that validate request data, and provides an implementation for
// Go struct types.
package schema

import (
	"errors"
	"reflect"
	"strings"
)

// Schema parses and validates candidate data.
type Schema interface {
	// Parse validates data and returns the coerced, typed result. Validation
	// failures are returned as Issues.
	Parse(data any) (any, error)
	// Shape returns the Go type the schema produces. It may return nil for
	// schemas that declare no fields.
	Shape() reflect.Type
}

// Issue is a single validation failure.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Issues is the ordered list of failures reported by a schema. The order is
// stable for the same input.
type Issues []Issue

// Error implements the error interface.
func (is Issues) Error() string {
	msgs := make([]string, len(is))
	for i, iss := range is {
		msgs[i] = iss.Message
	}

	return strings.Join(msgs, "; ")
}

// FirstMessage returns the message of the first issue in err, or the error
// string if err doesn't contain Issues.
func FirstMessage(err error) string {
	if err == nil {
		return ""
	}

	var issues Issues
	if errors.As(err, &issues) && len(issues) > 0 {
		return issues[0].Message
	}

	return err.Error()
}

type voidSchema struct{}

// Void returns a schema that declares no fields. It accepts any input and
// always produces nil.
func Void() Schema {
	return voidSchema{}
}

func (voidSchema) Parse(any) (any, error) {
	return nil, nil //nolint:nilnil // There is no data to return.
}

func (voidSchema) Shape() reflect.Type {
	return nil
}
