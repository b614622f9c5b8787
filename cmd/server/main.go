package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saveedit/internal/platform/config"
	"saveedit/internal/platform/httpserver"
	"saveedit/internal/platform/logger"
	"saveedit/internal/platform/metrics"
	platformredis "saveedit/internal/platform/redis"
	savesHandler "saveedit/internal/saves/handler"
	"saveedit/internal/saves/service"
	"saveedit/internal/saves/store"
	httptransport "saveedit/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	var sessions store.SessionStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		sessions = store.NewRedisSessionStore(redisClient.Client, cfg.SessionTTL)
		log.Info("using redis session store")
	} else {
		sessions = store.NewInMemorySessionStore(cfg.SessionTTL)
		log.Info("using in-memory session store")
	}

	svc, err := service.New(sessions, log, m)
	if err != nil {
		log.Error("service init failed", "error", err)
		os.Exit(1)
	}

	handler := savesHandler.New(svc, log, cfg.MaxUploadBytes, cfg.MaxBulkSaves)
	router := httptransport.NewRouter(handler)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting saveedit", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
