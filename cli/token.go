package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/bulletin/app/context"
	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/web/common"
)

// The Token command creates session tokens. A token is sent by clients in the
// AUTH cookie to authenticate as a user.
type Token struct {
	User    string    `arg:"" help:"The name of the user."`
	Expires time.Time `type:"expiration" help:"Duration or RFC 3339 timestamp when the token expires. E.g. 12h or %s. Default: the session expiration from the configuration."` //nolint:lll // Long struct tags are unavoidable.
}

// Run the token command.
func (c *Token) Run(appCtx *actx.Context) error {
	token, err := newSessionToken(appCtx, c.User, c.Expires)
	if err != nil {
		return err
	}
	fmt.Fprintln(appCtx.Stdout, token)

	return nil
}

// newSessionToken returns a session token for user signed with the configured
// session secret. If expiresAt is zero, the token expires after the configured
// session expiration.
func newSessionToken(appCtx *actx.Context, user string, expiresAt time.Time) (string, error) {
	cfg := appCtx.Config.Session
	if !cfg.Secret.Valid {
		return "", aerrors.NewRuntimeError("the session secret isn't set", nil,
			"Run 'bulletin init' to create it.")
	}

	key, err := common.ParseSessionSecret(cfg.Secret.V)
	if err != nil {
		return "", aerrors.NewRuntimeError("failed reading session secret", err, "")
	}

	if expiresAt.IsZero() {
		expiresAt = appCtx.TimeNow().UTC().Add(cfg.Expiration.V)
	}

	token, err := common.EncodeToken(common.Session{User: user, ExpiresAt: expiresAt}, key)
	if err != nil {
		return "", aerrors.NewRuntimeError("failed creating session token", err, "")
	}

	return token, nil
}
