package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tably/tably/internal/auth"
	"github.com/tably/tably/internal/config"
	"github.com/tably/tably/internal/handler"
	"github.com/tably/tably/internal/metrics"
	"github.com/tably/tably/internal/service"
	"github.com/tably/tably/internal/storage/sqlite"
	"github.com/tably/tably/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DB.Path)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Duration)

	sessions := service.NewSessionService(store, jwtManager, m, cfg.Presence.Threshold)
	payments := service.NewPaymentService(store, m, cfg.Presence.Threshold)

	router := handler.NewRouter(
		handler.NewSessionHandler(sessions),
		handler.NewPaymentHandler(payments),
		jwtManager,
		cfg.CORS.AllowOrigins,
		registry,
	)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("Server starting", "address", addr, "presence_threshold", cfg.Presence.Threshold)
	if err := router.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
