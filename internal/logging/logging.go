// Package logging builds the process logger.  Text output in development,
// JSON in production, and an optional rotating file next to stderr.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and destination.
type Options struct {
	Level string // debug | info | warn | error
	JSON  bool
	File  string // rotating log file; empty means stderr only
}

// New returns a logger prefixed "carbon".  An unknown level falls back to
// info.
func New(o Options) *log.Logger {
	return NewWithWriter(o, os.Stderr)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(o Options, console io.Writer) *log.Logger {
	w := console
	if o.File != "" {
		w = io.MultiWriter(console, &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	if err != nil {
		level = log.InfoLevel
	}

	opts := log.Options{
		ReportTimestamp: true,
		ReportCaller:    level == log.DebugLevel,
		Level:           level,
		Prefix:          "carbon",
	}
	if o.JSON {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}

// Discard returns a logger that writes nowhere, for tests and library
// callers that pass no logger.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
