// Package logging carries a logrus entry through request contexts and
// provides the chi request logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextLoggerKey struct{}

var stdEntry = logrus.NewEntry(logrus.StandardLogger())

// WithFields stores a logger carrying fields merged over any logger already in ctx.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, GetLogger(ctx).WithFields(fields))
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, contextLoggerKey{}, logger)
}

// GetLogger returns the logger in ctx, or the standard logger.
func GetLogger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return stdEntry
	}
	if logger, ok := ctx.Value(contextLoggerKey{}).(*logrus.Entry); ok && logger != nil {
		return logger
	}
	return stdEntry
}

// New builds a logger writing to out with the given level and format
// ("text" or "json").
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}
