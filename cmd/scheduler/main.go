package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/internal/logger"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/portfolio"
	"github.com/segyhp/emi-tracker/internal/repository"
	"github.com/segyhp/emi-tracker/internal/scheduler"
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

	zl.Info("Starting EMI scheduler...")

	store, err := repository.Open(context.Background(), cfg)
	if err != nil {
		zl.Fatal("Failed to open record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer store.Close()

	m := metrics.New(prometheus.NewRegistry())
	aggregator := portfolio.NewAggregator(portfolio.Options{
		UpcomingLimit:  cfg.Business.UpcomingLimit,
		OverduePenalty: cfg.Business.OverduePenalty,
	})
	trackerService := service.NewTrackerService(store, aggregator, m, zl)
	jobs := scheduler.NewJobs(trackerService, m, zl, cfg.Scheduler.ReminderWindowDays)

	// Initialize cron scheduler
	c := scheduler.NewCron(cfg.Location(), zl)

	if err := jobs.Register(c, cfg.Scheduler); err != nil {
		zl.Fatal("Failed to schedule jobs", zap.Error(err))
	}

	// Start the scheduler
	c.Start()
	zl.Info("Scheduler started",
		zap.String("reminder_spec", cfg.Scheduler.ReminderSpec),
		zap.String("overdue_spec", cfg.Scheduler.OverdueSpec),
		zap.String("timezone", cfg.Scheduler.Timezone),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	zl.Info("Scheduler stopped")
}
