package action

import (
	"log/slog"
	"net/http"
)

// Route produces the response for a single request, usually by creating a
// Builder for the request and running its Action.
type Route func(*http.Request) *Response

// Handle creates an HTTP handler function that writes the response of route.
// If the route fails to produce a response, a generic 500 response is written.
func Handle(route Route, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := route(r)
		if resp == nil {
			logger.Error("route returned a nil response", "method", r.Method, "url", r.URL.String())
			resp = JSON(http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
		}

		if err := resp.Write(w); err != nil {
			logger.Error("failed writing response", "error", err.Error())
		}
	}
}
