package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jshah-ind/travelbot/internal/infrastructure/config"
	"github.com/jshah-ind/travelbot/internal/infrastructure/container"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Travelbot resolver", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("travelbot")

	app, err := container.New(ctx, cfg, log, m)
	if err != nil {
		log.Fatal("Failed to build resolver", "error", err)
	}

	// Expire idle conversation contexts
	go app.Store.RunSweeper(ctx, cfg.ContextSweepInterval)

	// Pick up airlines learned by other replicas
	go func() {
		refreshTicker := time.NewTicker(cfg.DirectoryRefreshInterval)
		defer refreshTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Directory refresher stopped")
				return
			case <-refreshTicker.C:
				if err := app.Directory.Refresh(ctx); err != nil {
					log.Error("Error refreshing airline directory", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !app.Directory.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Airline directory not loaded"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	mux.HandleFunc("/stats/extraction", func(w http.ResponseWriter, r *http.Request) {
		if app.Attempts == nil {
			http.Error(w, "attempt log disabled", http.StatusNotFound)
			return
		}
		window := 24 * time.Hour
		if raw := r.URL.Query().Get("window"); raw != "" {
			if d, err := time.ParseDuration(raw); err == nil && d > 0 {
				window = d
			}
		}
		stats, err := app.Attempts.Summary(r.Context(), time.Now().Add(-window))
		if err != nil {
			log.Error("Error summarizing extraction attempts", "error", err)
			http.Error(w, "summary unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Stop the sweeper and refresher

	app.Close(shutdownCtx)

	log.Info("Travelbot resolver stopped")
}
