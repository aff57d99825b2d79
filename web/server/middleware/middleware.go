// Package middleware contains HTTP middleware applied to all routes of the web
// server.
package middleware

import "net/http"

// Middleware is a function that wraps an http.Handler to provide additional
// functionality such as logging or request tagging.
type Middleware func(http.Handler) http.Handler
