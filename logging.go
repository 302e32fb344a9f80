package georef

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger configures and installs the process-wide default logger.
// LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT (text|json) are read from
// the environment.
func SetupLogger() *slog.Logger {

	lvl := slog.LevelInfo

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	var h slog.Handler

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}
