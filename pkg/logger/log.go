// Package logger builds the process-wide logrus logger. Adapted from
// lazydocker's pkg/log: a dev logger writes to a file so it doesn't clobber
// the terminal a debug session is about to chroot into, a prod logger
// discards everything.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config controls logger construction. Grounded on lazydocker's
// log.NewLogger(config, rollrusHook) signature, trimmed of the rollbar
// hook (no crash-reporting collaborator exists in this spec).
type Config struct {
	Debug     bool
	StateRoot string // used to place injesh.log when Debug is set
}

// New builds a *logrus.Logger per Config.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(getLogLevel())

	var out io.Writer = io.Discard
	if cfg.Debug {
		if cfg.StateRoot != "" {
			if f, err := os.OpenFile(filepath.Join(cfg.StateRoot, "injesh.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				out = f
			}
		}
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// getLogLevel reads INJESH_LOG_LEVEL, defaulting to info. Mirrors
// lazydocker's log.getLogLevel reading LOG_LEVEL.
func getLogLevel() logrus.Level {
	levelStr := os.Getenv("INJESH_LOG_LEVEL")
	if levelStr == "" {
		return logrus.InfoLevel
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
