// Package logging builds the process logger from ROPTOOL_LOG_* variables:
//
//	ROPTOOL_LOG_LEVEL    debug, info, warn or error (default warn)
//	ROPTOOL_LOG_PREFIX   message prefix (default "roptool ")
//	ROPTOOL_LOG_TO_FILE  "1" writes to roptool-<timestamp>.log in the working directory
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const defaultPrefix = "roptool "

// LoggerCloser is a logger that may own its output file.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close releases the log file, if the logger opened one.
func (lc *LoggerCloser) Close() error {
	if lc.closer == nil {
		return nil
	}
	return lc.closer.Close()
}

// LevelFromEnv parses ROPTOOL_LOG_LEVEL. Unknown or empty values mean warn.
func LevelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv("ROPTOOL_LOG_LEVEL")) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// NewLoggerWithWriter logs to w. w is closed by Close unless it is stderr.
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	prefix := os.Getenv("ROPTOOL_LOG_PREFIX")
	if prefix == "" {
		prefix = defaultPrefix
	}

	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           LevelFromEnv(),
		Prefix:          prefix,
	})

	lc := &LoggerCloser{Logger: lg}
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		lc.closer = c
	}
	return lc
}

// NewLogger logs to stderr, or to a fresh file when ROPTOOL_LOG_TO_FILE=1.
// It falls back to stderr if the file cannot be created.
func NewLogger() *LoggerCloser {
	if os.Getenv("ROPTOOL_LOG_TO_FILE") != "1" {
		return NewLoggerWithWriter(os.Stderr)
	}

	name := fmt.Sprintf("roptool-%s.log", time.Now().Format("20060102-150405"))
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return NewLoggerWithWriter(os.Stderr)
	}
	return NewLoggerWithWriter(f)
}
