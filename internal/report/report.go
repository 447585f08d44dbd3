// Package report captures unexpected server errors for operators.
package report

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"userdesk/internal/logging"
)

// Tags annotate a captured error, e.g. handler, operation and request id.
type Tags map[string]string

// Reporter receives errors that clients only see as a generic failure.
type Reporter interface {
	Capture(ctx context.Context, err error, tags Tags)
	Flush(timeout time.Duration) bool
}

// LogReporter writes captured errors to the context logger.
type LogReporter struct{}

func (LogReporter) Capture(ctx context.Context, err error, tags Tags) {
	if err == nil {
		return
	}
	fields := make(logrus.Fields, len(tags))
	for k, v := range tags {
		fields[k] = v
	}
	logging.GetLogger(ctx).WithFields(fields).WithError(err).Error("unexpected error")
}

func (LogReporter) Flush(time.Duration) bool { return true }

// SentryReporter logs like LogReporter and forwards the error to Sentry.
type SentryReporter struct {
	hub *sentry.Hub
	log LogReporter
}

// NewSentry builds a reporter on its own Sentry client.
func NewSentry(opts sentry.ClientOptions) (*SentryReporter, error) {
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (r *SentryReporter) Capture(ctx context.Context, err error, tags Tags) {
	if err == nil {
		return
	}
	r.log.Capture(ctx, err, tags)
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// New returns a SentryReporter when dsn is set and a LogReporter otherwise.
func New(dsn, environment string) (Reporter, error) {
	if dsn == "" {
		return LogReporter{}, nil
	}
	return NewSentry(sentry.ClientOptions{Dsn: dsn, Environment: environment})
}
