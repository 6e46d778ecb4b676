package platform

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log file permissions
const (
	DefaultLogFilePermissions = 0644
)

// ParseLogLevel maps a level name to a slog level; unknown names mean INFO
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR", "CRITICAL":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a text logger writing to out and, when file is set, also
// appending to file. The returned closer releases the log file.
func NewLogger(out io.Writer, level, file string) (*slog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	w := out

	if file != "" {
		if dir := filepath.Dir(file); dir != "." {
			if err := CreateDirectoryIfNotExists(dir); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, DefaultLogFilePermissions)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", file, err)
		}
		closer = f
		w = io.MultiWriter(out, f)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLogLevel(level)})
	return slog.New(handler), closer, nil
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
