package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	actx "go.hackfix.me/bulletin/app/context"
	"go.hackfix.me/bulletin/crypto"
	"go.hackfix.me/bulletin/web/server/action"
	"go.hackfix.me/bulletin/web/server/types"
)

// Handler is the API endpoint handler.
type Handler struct {
	appCtx     *actx.Context
	sessionKey *[crypto.KeySize]byte
	logger     *slog.Logger
}

// SetupHandlers configures the web API handlers. sessionKey is the key session
// tokens are verified with.
func SetupHandlers(appCtx *actx.Context, sessionKey *[crypto.KeySize]byte, logger *slog.Logger) http.Handler {
	h := &Handler{appCtx: appCtx, sessionKey: sessionKey, logger: logger}

	r := chi.NewRouter()
	r.Get("/posts", action.Handle(h.ListPosts, logger))
	r.Post("/posts", action.Handle(h.CreatePost, logger))
	r.Get("/posts/{id}", action.Handle(h.GetPost, logger))

	return r
}

// newAction returns an action builder for req, configured with the server's
// logger and request body limit.
func (h *Handler) newAction(
	req *http.Request, opts ...action.Option[types.ActionContext],
) *action.Builder[types.ActionContext] {
	defaults := []action.Option[types.ActionContext]{
		action.WithLogger[types.ActionContext](h.logger),
	}
	if cfg := h.appCtx.Config; cfg != nil && cfg.Server.MaxBodySize.Valid {
		defaults = append(defaults,
			action.WithMaxBodySize[types.ActionContext](cfg.Server.MaxBodySize.V))
	}

	return action.New(req, append(defaults, opts...)...)
}
