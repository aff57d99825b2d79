package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/bulletin/app/config"
	actx "go.hackfix.me/bulletin/app/context"
	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/cli"
	"go.hackfix.me/bulletin/db"
	"go.hackfix.me/bulletin/db/queries"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// path of an optional .env file loaded before parsing the CLI arguments
	dotEnvPath string
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.ctx, configFilePath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.loadDotEnv(); err != nil {
		return err
	}

	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.initConfig(); err != nil {
		return err
	}

	if err := app.initDB(); err != nil {
		return err
	}

	app.cli.ApplyConfig(app.ctx.Config)

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

// loadDotEnv applies the values of the .env file to the process environment.
// Values that are already set in the environment take precedence.
func (app *App) loadDotEnv() error {
	if app.dotEnvPath == "" || app.ctx.Env == nil {
		return nil
	}

	env, err := readDotEnv(app.ctx.FS, app.dotEnvPath)
	if err != nil {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("failed loading %s", app.dotEnvPath), err, "")
	}

	for key, val := range env {
		if app.ctx.Env.Get(key) != "" {
			continue
		}
		if err = app.ctx.Env.Set(key, val); err != nil {
			return fmt.Errorf("failed setting environment variable %s: %w", key, err)
		}
	}

	return nil
}

func (app *App) initConfig() error {
	if app.ctx.Config == nil {
		app.ctx.Config = config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	}

	if err := app.ctx.Config.Load(); err != nil {
		return aerrors.NewRuntimeError("failed loading configuration", err,
			fmt.Sprintf("Check the configuration file at %s", app.ctx.Config.Path()))
	}
	app.ctx.Config.SetDefaults()

	return nil
}

func (app *App) initDB() error {
	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed creating data directory: %w", err)
		}

		dbPath := filepath.Join(app.cli.DataDir, "bulletin.db")
		d, err := db.Open(app.ctx.Ctx, dbPath, app.ctx.TimeNow)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening database", err, "")
		}
		app.ctx.DB = d
	}

	version, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading database version", err, "")
	}
	app.ctx.VersionInit = version.V

	return nil
}
