package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/mytodos/internal/app"
	"github.com/idilsaglam/mytodos/internal/config"
	"github.com/idilsaglam/mytodos/internal/kv"
	"github.com/idilsaglam/mytodos/internal/logging"
	"github.com/idilsaglam/mytodos/internal/mirror"
	"github.com/idilsaglam/mytodos/internal/theme"
)

// env is everything a subcommand needs, built from config + flags.
type env struct {
	cfg     *config.Config
	theme   theme.Theme
	logger  *log.Logger
	store   kv.Store
	session *app.Session

	closers []io.Closer
}

// loadConfig layers flags over file + environment.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	if f.driver != "" {
		cfg.Storage.Driver = f.driver
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, usagef("%v", err)
	}
	return cfg, nil
}

// open builds the environment and loads the session. logTo receives
// diagnostics unless the config names a log file.
func open(cmd *cobra.Command, f *flags, logTo io.Writer) (*env, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	scheme, err := theme.ParseScheme(cfg.Theme)
	if err != nil {
		return nil, usagef("%v", err)
	}
	e.theme = theme.New(scheme)

	opts := logging.DefaultOptions()
	opts.Level = cfg.Log.Level
	if cfg.Log.File != "" {
		logger, closer, err := logging.OpenFile(cfg.Log.File, opts)
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closers = append(e.closers, closer)
	} else if e.logger, err = logging.New(logTo, opts); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	e.store, err = kv.Open(ctx, cfg.StorageOptions())
	if err != nil {
		e.close(ctx)
		return nil, fmt.Errorf("open storage: %w", err)
	}
	e.closers = append(e.closers, e.store)

	m := mirror.New(e.store, cfg.Storage.Key, mirror.WithLogger(e.logger))
	e.session = app.New(m, e.logger)
	e.session.Load(ctx)
	return e, nil
}

// close drains pending writes, then releases storage and log files.
func (e *env) close(ctx context.Context) {
	if e.session != nil {
		if err := e.session.Close(ctx); err != nil {
			e.logger.Error("close", "err", err)
		}
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}
