package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/notegen-backend/internal/modules/notes"
	"github.com/yungbote/notegen-backend/internal/observability"
	"github.com/yungbote/notegen-backend/internal/platform/logger"
)

type App struct {
	Log    *logger.Logger
	Config *Config

	server       *http.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "notegen",
		Environment: cfg.Env,
	})

	gen := wireEngine(log, cfg.Engine)
	usecases := notes.NewUsecases(log, gen)
	handlers := wireHandlers(log, usecases)
	router := wireRouter(log, cfg, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
	}

	return &App{
		Log:          log,
		Config:       cfg,
		server:       srv,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout and flushes pending trace spans.
func (a *App) Run(ctx context.Context) error {
	a.Log.Info("Server listening", "addr", a.Config.HTTP.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
		a.close(shutdownCtx)
		return nil
	case err := <-errCh:
		a.close(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) close(ctx context.Context) {
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	a.Log.Sync()
}
