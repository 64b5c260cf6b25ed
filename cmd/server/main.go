package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/internal/handler"
	"github.com/segyhp/emi-tracker/internal/logger"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/portfolio"
	"github.com/segyhp/emi-tracker/internal/repository"
	"github.com/segyhp/emi-tracker/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	// Initialize record store
	store, err := repository.Open(context.Background(), cfg)
	if err != nil {
		zl.Fatal("Failed to open record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize service
	aggregator := portfolio.NewAggregator(portfolio.Options{
		UpcomingLimit:  cfg.Business.UpcomingLimit,
		OverduePenalty: cfg.Business.OverduePenalty,
	})
	trackerService := service.NewTrackerService(store, aggregator, m, zl)

	if cfg.Store.SeedData {
		n, err := trackerService.SeedSampleData(context.Background())
		if err != nil {
			zl.Fatal("Failed to seed sample data", zap.Error(err))
		}
		zl.Info("Sample data checked", zap.Int("seeded", n))
	}

	loanHandler := handler.NewLoanHandler(trackerService)
	healthHandler := handler.NewHealthHandler(store, cfg.Store.Backend, cfg.Health.Timeout)

	// Start server
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler.NewRouter(loanHandler, healthHandler, m.Handler(), zl),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		zl.Info("Server starting", zap.String("addr", server.Addr), zap.String("backend", cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	zl.Info("Server exited")
}
