package middleware

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// Logger writes an access log record for each request once its response is
// sent. Responses with a 5xx status are logged at the warning level, since the
// error itself is logged by the handler that produced it.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			level := slog.LevelInfo
			if m.Code >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "served request",
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.RequestURI()),
				slog.Int("status_code", m.Code),
				slog.Duration("duration", m.Duration),
				slog.Int64("bytes_sent", m.Written),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
