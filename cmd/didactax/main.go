package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"didactax/internal/app"
	"didactax/internal/config"
	"didactax/internal/server"
	"didactax/internal/util"
	"didactax/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	sessions, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("failed to init session store: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:             dataStore,
		Sessions:          sessions,
		DashboardPageSize: cfg.DashboardPageSize,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App: appCore,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("didactax server listening", "addr", addr, "sessionBackend", cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func newSessionStore(cfg config.FileConfig) (store.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendJWT:
		return store.NewJWTSessionStore(cfg.SessionSecret, cfg.ParseSessionTTL())
	case config.SessionBackendRedis:
		return store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.ParseSessionTTL()), nil
	default:
		return store.NewMemorySessionStore(), nil
	}
}
