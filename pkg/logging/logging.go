// Package logging builds the zerolog logger used by the control layer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/shadecut/pkg/config"
	"github.com/rs/zerolog"
)

// New returns a logger writing to stderr.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewWriter(os.Stderr, cfg)
}

// NewWriter returns a logger writing to w, either as human console output
// or as JSON lines.
func NewWriter(w io.Writer, cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer
	switch cfg.Format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", s)
}
