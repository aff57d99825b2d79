package action

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"go.hackfix.me/bulletin/web/server/types"
)

// Response is the result of an action. The body is serialized as JSON.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       any
}

// JSON returns a new response with the given status code and body.
func JSON(statusCode int, body any) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       body,
	}
}

// NewErrorResponse returns the response for a known error. The body only
// contains the error message.
func NewErrorResponse(err *types.Error) *Response {
	return JSON(err.StatusCode, err)
}

// internalErrorBody is written when a response body can't be serialized.
var internalErrorBody = []byte(`{"message":"Internal Server Error"}`)

// Write serializes the response as JSON into w. If the body can't be
// serialized, a 500 error response is written instead, and the marshalling
// error is returned.
func (r *Response) Write(w http.ResponseWriter) error {
	data, err := json.Marshal(r.Body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(internalErrorBody)
		return fmt.Errorf("failed marshalling response into JSON: %w", err)
	}

	maps.Copy(w.Header(), r.Header)
	w.Header().Set("Content-Type", "application/json")

	statusCode := r.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("failed writing response: %w", err)
	}

	return nil
}
