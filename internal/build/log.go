// Package build holds process-wide plumbing shared by every spotter command:
// version information and log setup.
package build

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// LogConfig selects where logs go and how verbose they are.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, critical, off.
	Level string

	// Dir enables the rotating log file when non-empty.
	Dir string

	MaxFiles      int
	MaxFileSizeMB int

	// Console receives human readable lines. Defaults to stderr so stdout
	// stays free for command output and the MCP stdio transport.
	Console io.Writer
}

// ParseLevel maps a level name to a btclog level.
func ParseLevel(name string) (btclog.Level, error) {
	level, ok := btclog.LevelFromString(strings.ToLower(name))
	if !ok {
		return btclog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}

	return level, nil
}

// Logger is a configured root logger and the resources behind it.
type Logger struct {
	*slog.Logger

	handler *fanout
	file    *fileLog
}

// NewLogger builds the root logger from cfg.
func NewLogger(cfg LogConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []btclogv2.Handler{btclogv2.NewDefaultHandler(console)}

	var file *fileLog
	if cfg.Dir != "" {
		maxFiles := cfg.MaxFiles
		if maxFiles <= 0 {
			maxFiles = DefaultMaxLogFiles
		}
		maxSize := cfg.MaxFileSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxLogFileSizeMB
		}

		file, err = openFileLog(cfg.Dir, maxFiles, maxSize)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, btclogv2.NewDefaultHandler(file))
	}

	handler := newFanout(handlers...)
	handler.SetLevel(level)

	return &Logger{
		Logger:  slog.New(handler),
		handler: handler,
		file:    file,
	}, nil
}

// SetLevel changes the level of every output.
func (l *Logger) SetLevel(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	l.handler.SetLevel(level)

	return nil
}

// Close flushes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}
