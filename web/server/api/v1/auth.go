package api

import (
	"context"
	"errors"
	"net/http"

	"go.hackfix.me/bulletin/web/common"
	"go.hackfix.me/bulletin/web/server/types"
)

// Authenticate is an action middleware that verifies the session token sent
// in the AUTH cookie, and sets the user it was issued to in the action
// context value.
func (h *Handler) Authenticate(
	_ context.Context, c types.ActionContext, req *http.Request,
) (types.ActionContext, error) {
	cookie, err := req.Cookie(common.SessionCookie)
	if err != nil {
		return c, types.NewError(http.StatusUnauthorized, "Failed to parse")
	}

	session, err := common.DecodeToken(cookie.Value, h.sessionKey, h.appCtx.TimeNow())
	switch {
	case errors.Is(err, common.ErrExpiredToken):
		return c, types.NewError(http.StatusUnauthorized, "Session expired")
	case err != nil:
		h.logger.Debug("rejected session token", "error", err.Error())
		return c, types.NewError(http.StatusUnauthorized, "Failed to parse")
	}

	c.User = &types.User{Name: session.User}

	return c, nil
}
