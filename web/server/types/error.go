package types

import "net/http"

// Error names identify the class of a known error in diagnostic logs.
const (
	ErrorNameServer     = "ServerError"
	ErrorNameConfig     = "ConfigError"
	ErrorNameConflict   = "ConflictError"
	ErrorNameValidation = "ValidationError"
)

// Error represents an HTTP error with status code and message. It is the only
// kind of error whose message is returned to clients; any other error is
// reported as an internal server error.
type Error struct {
	StatusCode int    `json:"-"`
	Name       string `json:"-"`
	Message    string `json:"message"`
}

// Error returns the error message string. Only *Error implements the error
// interface, so that every known error is matched by errors.As.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new Error with the specified status code and message.
func NewError(statusCode int, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		Name:       ErrorNameServer,
		Message:    message,
	}
}

// NewConfigError returns an error for a misconfigured action pipeline.
func NewConfigError(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Name:       ErrorNameConfig,
		Message:    message,
	}
}

// NewConflictError returns an error for contradictory builder usage, such as
// declaring the request body schema twice.
func NewConflictError(message string) *Error {
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Name:       ErrorNameConflict,
		Message:    message,
	}
}

// NewValidationError returns an error for request data that failed parsing or
// schema validation.
func NewValidationError(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Name:       ErrorNameValidation,
		Message:    message,
	}
}
