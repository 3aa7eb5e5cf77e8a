// cmd/api/server.go
// This file runs the HTTP server until a shutdown signal arrives, then drains
// in-flight requests and closes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds both the request drain and the store disconnect.
const shutdownTimeout = 20 * time.Second

// serve listens on the configured port and blocks until SIGINT or SIGTERM.
// closeStore runs once the last request has finished, sharing the shutdown
// deadline with the drain.
func (app *applicationDependencies) serve(closeStore func(context.Context) error) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error, 1)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(ctx)
		if closeErr := closeStore(ctx); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", closeErr))
		}
		shutdownErr <- err
	}()

	app.logger.Info("starting server",
		"address", srv.Addr,
		"environment", app.config.environment,
		"store", app.config.store,
		"version", appVersion,
	)

	// ErrServerClosed means Shutdown was called.
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	app.logger.Info("server stopped", "address", srv.Addr)
	return nil
}
