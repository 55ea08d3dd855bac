package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ent0n29/callbridge/internal/config"
	"github.com/ent0n29/callbridge/internal/httpapi"
	"github.com/ent0n29/callbridge/internal/observability"
	"github.com/ent0n29/callbridge/internal/ultravox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	slog.SetDefault(logger)

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	client, err := ultravox.NewClient(ultravox.Config{
		APIURL: cfg.UltravoxAPIURL,
		APIKey: cfg.UltravoxAPIKey,
	})
	if err != nil {
		log.Fatalf("ultravox client init failed: %v", err)
	}

	api := httpapi.New(cfg, client, metrics, logger)
	defer api.Close()

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			"addr", cfg.BindAddr,
			"ultravox_url", client.URL(),
			"model", cfg.Agent.Model,
			"voice", cfg.Agent.Voice,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = httpServer.Close()
	}

	logger.Info("shutdown complete")
}
