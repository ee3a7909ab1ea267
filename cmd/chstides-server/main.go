// chstides-server serves the station and conditions of one CHS tide station
// as JSON. It is configured with CHSTIDES_ environment variables, optionally
// read from a .env file named by CHSTIDES_ENV_FILE.
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

	"github.com/timgluz/chstides/secret"
	"github.com/timgluz/chstides/settings"
	"github.com/timgluz/chstides/tides"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chstides-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := settings.LoadEnvFile(os.Getenv("CHSTIDES_ENV_FILE")); err != nil {
		return err
	}

	v := settings.New()
	logger, err := settings.NewLogger(os.Stderr, v.GetString(settings.KeyLogLevel))
	if err != nil {
		return err
	}
	logger = logger.With("component", "chstides-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := settings.ClientConfig(v, logger)
	if err != nil {
		return err
	}

	server, err := newTidesServer(ctx, v.GetString(settings.KeyListenAddr), cfg, settings.APITokens(v), logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newTidesServer binds a client to its station before the server starts, so
// a wrong selector fails at startup rather than on the first request.
func newTidesServer(ctx context.Context, addr string, cfg tides.Config, tokens []string, logger *slog.Logger) (*http.Server, error) {
	client, err := tides.New(cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Initialize(ctx); err != nil {
		return nil, err
	}

	app := &tidesServer{client: client, logger: logger}
	if len(tokens) > 0 {
		store, err := secret.NewTokenStore(tokens...)
		if err != nil {
			return nil, fmt.Errorf("invalid API tokens: %w", err)
		}
		app.tokens = store
		logger.Info("Bearer authentication enabled", "tokens", store.Len())
	} else {
		logger.Warn("No API tokens configured, serving without authentication")
	}

	if !app.IsReady() {
		return nil, fmt.Errorf("tides server is not ready")
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if store, ok := app.tokens.(*secret.InMemoryStore); ok {
		server.RegisterOnShutdown(func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close token store", "error", err)
			}
		})
	}
	return server, nil
}
