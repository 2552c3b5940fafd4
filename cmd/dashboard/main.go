package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"orderdesk/internal/backend"
	"orderdesk/internal/config"
	"orderdesk/internal/dashboard"
	"orderdesk/internal/db"
	"orderdesk/internal/httpserver"
	"orderdesk/internal/logx"
	"orderdesk/internal/migrate"
	"orderdesk/internal/storage"
	"orderdesk/internal/validation"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logx.Fatal().Err(err).Msg("load config")
	}
	production := cfg.Environment().IsProduction()
	logx.Init(production)
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("open storage")
	}
	defer closeStore()

	// Screens get a per-session token source from their workspace.
	client, err := backend.New(cfg.BackendURL, cfg.BackendTimeout(), nil)
	if err != nil {
		logx.Fatal().Err(err).Msg("init backend client")
	}
	validator := validation.New()
	opts := dashboard.Options{PageSize: cfg.DefaultPageSize, Locale: cfg.Language()}
	registry := dashboard.NewRegistry(cfg.SessionIdleTTL, func(id string) *dashboard.Workspace {
		return dashboard.NewWorkspace(id, store, client, validator, opts)
	})

	srv, err := httpserver.New(cfg.HTTPAddr, httpserver.Deps{
		Store:           store,
		Registry:        registry,
		FallbackMessage: cfg.FallbackMessage,
		CORSOrigins:     cfg.CORSOrigins,
		SecureCookies:   production,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendURL).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logx.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logx.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logx.Info().Msg("server stopped")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemory(), func() {}, nil
	case config.StorageRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(client, cfg.Redis.KeyTTL), func() { _ = client.Close() }, nil
	case config.StoragePostgres:
		if err := migrate.Apply(ctx, cfg.DBConnString); err != nil {
			return nil, nil, err
		}
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
