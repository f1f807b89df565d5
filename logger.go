package linerag

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

const (
	LevelDebug = slog.Level(-4)
	LevelInfo  = slog.Level(0)
	LevelWarn  = slog.Level(4)
	LevelError = slog.Level(8)
)

func init() {
	handler := slog.NewTextHandler(os.Stdout,
		&slog.HandlerOptions{Level: LevelInfo})
	Logger = slog.New(handler)
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetupLambdaLogger switches Logger to JSON output so CloudWatch can index the fields.
func SetupLambdaLogger(w io.Writer, level string) {
	handler := slog.NewJSONHandler(w,
		&slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// SetupTextLogger is used by the cli.
func SetupTextLogger(w io.Writer, level string) {
	handler := slog.NewTextHandler(w,
		&slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}
