package app

import (
	"fmt"
	"io"
	"log/slog"
)

// newLogger builds the run logger. It does not set the global logger, so
// several apps can log to different writers. An empty level or format
// selects info and text.
func newLogger(levelStr, formatStr string, outW io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if levelStr != "" {
		if err := level.UnmarshalText([]byte(levelStr)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch formatStr {
	case "", "text":
		return slog.New(slog.NewTextHandler(outW, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(outW, handlerOpts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", formatStr)
}
