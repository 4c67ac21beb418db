package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/roasbeef/spotter/internal/build"
	"github.com/roasbeef/spotter/internal/config"
	"github.com/roasbeef/spotter/internal/i18n"
	"github.com/roasbeef/spotter/internal/kvstore"
	"github.com/roasbeef/spotter/internal/recommend"
	"github.com/roasbeef/spotter/internal/reviewapi"
	"github.com/roasbeef/spotter/internal/view"
	"github.com/spf13/cobra"
)

// Process-wide state built by setup.
var (
	cfg    config.Config
	logger *build.Logger
	store  kvstore.Store

	// closeStore releases the database, if one was opened.
	closeStore func() error
)

// setup loads the config, then opens logging and the state store.
func setup(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	var err error
	cfg, err = config.Load(path, envFile)
	if err != nil {
		return err
	}
	applyFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = build.NewLogger(build.LogConfig{
		Level: cfg.LogLevel,
		Dir:   cfg.LogDir,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if memoryStore || cfg.DBPath == "" {
		store = kvstore.NewMemStore()
		closeStore = func() error { return nil }

		return nil
	}

	db, err := kvstore.OpenSQLite(cfg.DBPath, logger.Logger)
	if err != nil {
		return err
	}
	store, closeStore = db, db.Close

	return nil
}

// applyFlags overlays explicitly set flags on the loaded config.
func applyFlags(cmd *cobra.Command) {
	overlay := func(name, value string, dst *string) {
		if f := cmd.Flag(name); f != nil && f.Changed {
			*dst = value
		}
	}
	overlay("env", envName, &cfg.Env)
	overlay("base-url", baseURL, &cfg.BaseURL)
	overlay("lang", langFlag, &cfg.Lang)
	overlay("db", dbPath, &cfg.DBPath)
	overlay("log-level", logLevel, &cfg.LogLevel)
}

func teardown(*cobra.Command, []string) error {
	var firstErr error
	if closeStore != nil {
		firstErr = closeStore()
	}
	if logger != nil {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context,
	context.CancelFunc) {

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newClient builds the backend client from the config.
func newClient() (*reviewapi.Client, error) {
	clientCfg, err := cfg.Client()
	if err != nil {
		return nil, err
	}

	return reviewapi.NewClient(clientCfg, logger.Logger), nil
}

// recommendationSource picks an S3, URL or file source for the result list.
func recommendationSource() (recommend.ListSource, error) {
	src := cfg.RecommendationsSource

	if bucket, key, ok := recommend.ParseS3URL(src); ok {
		client, err := recommend.NewS3Client(cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}

		return recommend.S3Source{
			Bucket: bucket, Key: key, Client: client,
		}, nil
	}

	if strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") {

		return recommend.URLSource{URL: src}, nil
	}

	return recommend.FileSource{Path: src}, nil
}

// newPresenter renders into console and applies the configured or stored
// language.
func newPresenter(ctx context.Context, console *view.Console,
	box i18n.InputBox) (*i18n.Presenter, error) {

	p := i18n.NewPresenter(i18n.PresenterConfig{
		Store: store,
		View:  console,
		Input: box,
		Log:   logger.Logger,
	})

	if cfg.Lang != "" {
		return p, p.Apply(ctx, p.Resolve(cfg.Lang))
	}

	return p, p.Init(ctx)
}
