package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go.hackfix.me/bulletin/app/config"
	actx "go.hackfix.me/bulletin/app/context"
	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/crypto"
	"go.hackfix.me/bulletin/web/common"
	api "go.hackfix.me/bulletin/web/server/api/v1"
	"go.hackfix.me/bulletin/web/server/middleware"
	"go.hackfix.me/bulletin/web/server/telemetry"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger         *slog.Logger
	shutdownTracer func(context.Context) error
}

// New returns a new web Server instance that will listen on addr. If addr is
// empty, the address from the configuration is used.
func New(appCtx *actx.Context, addr string) (*Server, error) {
	cfg := appCtx.Config
	if addr == "" {
		addr = cfg.Server.Address.V
	}

	if !cfg.Session.Secret.Valid {
		return nil, aerrors.NewRuntimeError("the session secret isn't set", nil,
			"Run 'bulletin init' to create it.")
	}
	sessionKey, err := common.ParseSessionSecret(cfg.Session.Secret.V)
	if err != nil {
		return nil, aerrors.NewRuntimeError("failed reading session secret", err, "")
	}

	logger := appCtx.Logger.With("component", "web-server")

	var traceOut io.Writer
	switch cfg.Telemetry.TraceOutput.V {
	case config.TraceOutputStdout:
		traceOut = appCtx.Stdout
	case config.TraceOutputStderr:
		traceOut = appCtx.Stderr
	}
	shutdownTracer, err := telemetry.InitTracer("bulletin", appCtx.Version.Semantic, traceOut, logger)
	if err != nil {
		return nil, fmt.Errorf("failed initializing tracing: %w", err)
	}

	srv := &Server{
		Server: &http.Server{
			Handler:           SetupHandlers(appCtx, sessionKey, logger),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.ReadTimeout.V,
			WriteTimeout:      cfg.Server.WriteTimeout.V,
		},
		logger:         logger,
		shutdownTracer: shutdownTracer,
	}

	return srv, nil
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the system
// (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// Shutdown gracefully stops the server, and flushes pending trace spans.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.Server.Shutdown(ctx), s.shutdownTracer(ctx))
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(appCtx *actx.Context, sessionKey *[crypto.KeySize]byte, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "bulletin")
	})

	r.Mount("/api/v1", api.SetupHandlers(appCtx, sessionKey, logger))

	return r
}
