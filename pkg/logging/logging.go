// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler as the default slog logger. Dev mode adds
// source locations and uses a short time format for readability.
func Setup(level slog.Level, dev bool) {
	opts := &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}
	if dev {
		opts.TimeFormat = time.Kitchen
		opts.AddSource = true
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, opts)))
}
