package logging

import (
	"io"
	"log/slog"
)

// Setup installs a text handler writing to w as the default slog logger.
// The level is Debug when debug is set and level otherwise.
func Setup(w io.Writer, debug bool, level slog.Level) *slog.Logger {
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
