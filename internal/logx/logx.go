// Package logx configures the diagnostic logger. The TUI owns stdout, so
// diagnostics go to a log file under the data directory.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info, or the
	// value of CADERNO_LOG_LEVEL when set.
	Level string

	// File is the log file path. Empty resolves to DefaultLogPath.
	File string
}

// New builds a file-backed logger. The returned close function flushes and
// closes the underlying file.
func New(opts Options) (*log.Logger, func() error, error) {
	path := opts.File
	if path == "" {
		var err error
		path, err = DefaultLogPath()
		if err != nil {
			return nil, nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := newLogger(file, opts.Level)
	return logger, file.Close, nil
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.New(w)
	logger.SetLevel(parseLevel(level))
	logger.SetReportTimestamp(true)
	return logger
}

// DefaultLogPath resolves to $XDG_DATA_HOME/caderno/caderno.log
// (or ~/.local/share/caderno/caderno.log).
func DefaultLogPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "caderno", "caderno.log"), nil
}

func parseLevel(level string) log.Level {
	if level == "" {
		level = os.Getenv("CADERNO_LOG_LEVEL")
	}
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
