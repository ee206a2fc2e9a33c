// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package logging builds the process-wide slog.Logger the same way
// internal/cmd/root.go builds DMRHub's: a tint handler selected by level,
// installed as the slog default.
package logging

import (
	"log/slog"
	"os"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/lmittmann/tint"
)

// New builds and installs the default slog.Logger for the given level.
func New(level config.LogLevel) *slog.Logger {
	var logger *slog.Logger
	switch level {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
	return logger
}

// Component returns a logger tagged with the owning subsystem, the way the
// teacher tags per-subsystem loggers.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
