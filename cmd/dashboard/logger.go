package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// parseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func parseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// setupLogger creates the structured logger. When logFile is set, output goes
// to a rotating file without colours; otherwise to stderr.
// The returned func flushes and closes the file.
func setupLogger(level slog.Level, logFile string) (*slog.Logger, func()) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
		noColor bool
	)
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		w, noColor = rotator, true
		closeFn = func() { _ = rotator.Close() }
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	})
	return slog.New(handler), closeFn
}
