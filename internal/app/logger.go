package app

import (
	"io"
	"log/slog"
	"strings"
)

// secretMarkers flag attribute keys whose values never reach the log.
var secretMarkers = []string{"PWD", "PASSWORD", "SECRET", "TOKEN"}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactSecrets}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

// redactSecrets masks credentials such as DB_PWD when a config snapshot or
// a single setting is logged.
func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if isSecret(a.Key) && a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, "***")
	}
	return a
}

func isSecret(key string) bool {
	upper := strings.ToUpper(key)
	for _, m := range secretMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
