package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelVar = new(slog.LevelVar)

// L is the process-wide logger. Defaults to JSON on stdout for the server; the
// CLI switches to a text handler on stderr so chat output stays clean.
var L = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))

// SetLevel configures the global log level (debug, info, warn, error).
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// UseText replaces the handler with a human-readable one writing to w.
func UseText(w io.Writer) {
	L = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}
