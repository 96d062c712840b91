// Package logging wires log/slog to a charmbracelet/log terminal handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/alpemreelmas/hop-cli/internal/util"
)

// DefaultLevel is used when neither the flag nor the settings name a level.
const DefaultLevel = "warn"

// New returns a slog.Logger that writes human-readable lines to w.
func New(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          util.AppName,
		ReportTimestamp: lvl <= log.DebugLevel,
	})
	return slog.New(handler), nil
}

// Setup installs a logger built by New as the slog default.
func Setup(w io.Writer, level string) error {
	logger, err := New(w, level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
