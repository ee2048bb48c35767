package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init installs a JSON slog handler on stdout as the process default.
func Init() {
	InitWithWriter(os.Stdout, slog.LevelInfo)
	Info("logger initialized", nil)
}

// InitWithWriter is Init with a caller-chosen sink and level.
func InitWithWriter(w io.Writer, level slog.Level) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// Default returns the logger behind the package helpers.
func Default() *slog.Logger {
	return slog.Default()
}

func Info(msg string, fields map[string]any) {
	slog.Info(msg, attrs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	slog.Warn(msg, attrs(fields)...)
}

func Error(msg string, fields map[string]any) {
	slog.Error(msg, attrs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	slog.Error(msg, attrs(fields)...)
	os.Exit(1)
}

func attrs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}
