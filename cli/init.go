package cli

import (
	"database/sql"
	"fmt"

	actx "go.hackfix.me/bulletin/app/context"
	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/crypto"
)

// The Init command creates the Bulletin database, and the secret used to sign
// session tokens.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("Bulletin is already initialized with version %s", appCtx.VersionInit), nil, "")
	}

	if err := appCtx.DB.Init(appCtx.Version.Semantic, appCtx.Logger); err != nil {
		return aerrors.NewRuntimeError("failed initializing database", err, "")
	}
	appCtx.VersionInit = appCtx.Version.Semantic

	if appCtx.Config.Session.Secret.Valid {
		return nil
	}

	secret, err := crypto.NewSecret()
	if err != nil {
		return aerrors.NewRuntimeError("failed generating session secret", err, "")
	}
	appCtx.Config.Session.Secret = sql.Null[string]{V: secret, Valid: true}
	if err = appCtx.Config.Save(); err != nil {
		return aerrors.NewRuntimeError("failed saving configuration", err, "")
	}
	appCtx.Logger.Info("created session secret", "config_file", appCtx.Config.Path())

	return nil
}
