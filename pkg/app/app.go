// Package app is injesh's composition root. Grounded on lazydocker's
// pkg/app/app.go: NewApp resolves configuration and logging once, then
// hands back a single object the CLI layer drives, and Close tears down
// the file handles App tracks (the logger's file is not among them).
package app

import (
	"os"

	"github.com/injesh/injesh/pkg/config"
	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/injesh/injesh/pkg/logger"
	"github.com/injesh/injesh/pkg/orchestrator"
	"github.com/sirupsen/logrus"
)

// App bundles the resolved configuration, logger, and orchestrator that
// every CLI subcommand needs.
type App struct {
	Config       *config.AppConfig
	Log          *logrus.Logger
	Orchestrator *orchestrator.Orchestrator

	logFile *os.File
}

// NewApp resolves identity, builds the logger, and wires the
// orchestrator. Mirrors lazydocker's app.NewApp(config) constructor
// shape.
func NewApp(version, commit, date, buildSource string, debug bool) (*App, error) {
	cfg, err := config.NewAppConfig(version, commit, date, buildSource, debug)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Debug: cfg.Debug, StateRoot: cfg.Identity.StateRoot})
	entry := log.WithField("component", "app")

	return &App{
		Config:       cfg,
		Log:          log,
		Orchestrator: orchestrator.New(cfg.Identity, entry),
	}, nil
}

// Close releases anything NewApp opened. Currently a no-op beyond
// satisfying the teacher's Close-on-every-App convention: logger.New
// keeps its own file handle internally rather than handing it back.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// KnownError reports whether err is a Fault of one of the kinds listed
// below, the class of error the CLI prints as a plain message rather than
// as an unexpected error. Faults of any other kind report false. Mirrors
// lazydocker's app.KnownError / ErrSubProcess handling.
func KnownError(err error) bool {
	return ierrors.Is(err, ierrors.KindNotInitialized) ||
		ierrors.Is(err, ierrors.KindAlreadyInitialized) ||
		ierrors.Is(err, ierrors.KindContainerNotFound) ||
		ierrors.Is(err, ierrors.KindAlreadyExists) ||
		ierrors.Is(err, ierrors.KindNoSessions) ||
		ierrors.Is(err, ierrors.KindUnsupportedRootFS) ||
		ierrors.Is(err, ierrors.KindNotImplemented)
}
