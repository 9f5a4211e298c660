package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/turbot/elb-access-log-collector/constants"
)

// LevelOff disables logging
const LevelOff = slog.Level(99)

const redacted = "<redacted>"

// attribute keys whose values must never be logged
var secretKeys = map[string]struct{}{
	"aws_key_id":  {},
	"aws_sec_key": {},
	"password":    {},
}

// Initialize sets the default logger. debug forces the debug level regardless of the environment.
func Initialize(name string, debug bool) {
	slog.SetDefault(NewLogger(os.Stderr, name, getLogLevel(debug)))
}

// NewLogger returns a JSON logger which redacts secret attributes
func NewLogger(w io.Writer, name string, level slog.Leveler) *slog.Logger {
	if level.Level() == LevelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if _, ok := secretKeys[strings.ToLower(a.Key)]; ok {
				return slog.String(a.Key, redacted)
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, handlerOptions)).With("source", name)
}

func getLogLevel(debug bool) slog.Leveler {
	if debug {
		return slog.LevelDebug
	}

	switch strings.ToLower(os.Getenv(constants.EnvLogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off":
		return LevelOff
	default:
		return slog.LevelInfo
	}
}
