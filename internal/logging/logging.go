// Package logging builds the process-wide logrus logger.  Output goes to
// stdout and, when a file is configured, to a size-rotated file managed by
// lumberjack.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls New.  File may be empty.
type Options struct {
	Level string
	File  string
	JSON  bool
}

// New returns a configured logger and a closer for the rotated file.  The
// closer is never nil.
func New(opts Options) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, nopCloser{}
	}
	rotated := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return logger, rotated
}

// Discard returns a logger that drops everything.  Tests use it.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
