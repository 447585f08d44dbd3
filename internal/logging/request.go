package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request through logger and stores the
// request-scoped entry in the request context for handlers.
func RequestLogger(logger *logrus.Logger) func(next http.Handler) http.Handler {
	logRequest := middleware.RequestLogger(&StructuredLogger{Logger: logger})
	return func(next http.Handler) http.Handler {
		return logRequest(contextLogger(next))
	}
}

func contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if entry, ok := middleware.GetLogEntry(r).(*StructuredLoggerEntry); ok {
			r = r.WithContext(WithLogger(r.Context(), entry.Logger))
		}
		next.ServeHTTP(w, r)
	})
}

// StructuredLogger implements middleware.LogFormatter on logrus.
type StructuredLogger struct {
	Logger *logrus.Logger
}

func (l *StructuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	fields := logrus.Fields{
		"method": r.Method,
		"uri":    r.RequestURI,
		"remote": r.RemoteAddr,
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		fields["request_id"] = reqID
	}
	return &StructuredLoggerEntry{Logger: l.Logger.WithFields(fields)}
}

type StructuredLoggerEntry struct {
	Logger *logrus.Entry
}

func (l *StructuredLoggerEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	l.Logger.WithFields(logrus.Fields{
		"status":     status,
		"bytes":      bytes,
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
	}).Info("request complete")
}

// Panic logs a recovered panic with its stack.
func (l *StructuredLoggerEntry) Panic(v interface{}, stack []byte) {
	l.Logger.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("request panic")
}
