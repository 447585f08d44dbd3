package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"userdesk/internal/adapters/httpapi"
	"userdesk/internal/config"
	"userdesk/internal/logging"
	"userdesk/internal/metrics"
	"userdesk/internal/query"
	"userdesk/internal/report"
	"userdesk/internal/service"
	"userdesk/internal/store"
)

type app struct {
	cfg      config.Config
	logger   *logrus.Logger
	reporter report.Reporter
	store    store.Store
	server   *http.Server
}

func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	logger, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	reporter, err := report.New(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("init reporter: %w", err)
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	recorder := metrics.New()
	users := service.New(st,
		service.WithMetricsRecorder(recorder),
		service.WithQueryEngine(query.Engine{DefaultPageSize: cfg.DefaultPageSize}),
	)
	handler := httpapi.NewRouter(httpapi.Options{
		Users:       users,
		Reporter:    reporter,
		Logger:      logger,
		Metrics:     recorder,
		CORSOrigins: cfg.CORSOrigins,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		reporter: reporter,
		store:    st,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}, nil
}

// serve blocks until ln fails or ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	log := a.logger.WithField("addr", ln.Addr().String())
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"driver":     a.store.Driver(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
		}).Info("starting server")
		errCh <- a.server.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server forced to shutdown")
			serveErr = err
		}
	}

	if err := store.Close(a.store); err != nil {
		log.WithError(err).Warn("close store")
	}
	a.reporter.Flush(2 * time.Second)
	if serveErr == nil {
		log.Info("graceful shutdown complete")
	}
	return serveErr
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	a, err := newApp(ctx, cfg, out)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		_ = store.Close(a.store)
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.serve(ctx, ln)
}
