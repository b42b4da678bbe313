package internal

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger     *slog.Logger
	loggerOnce sync.Once
)

// Logger returns the process-wide slog logger, level-gated by LOD_LOG.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		level := slog.LevelWarn
		switch strings.ToLower(os.Getenv("LOD_LOG")) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	})
	return logger
}
