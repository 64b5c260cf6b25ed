// Package scheduler runs the periodic reminder and overdue checks.
// Neither job changes a loan's status.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/emi-tracker/internal/config"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/service"
)

const jobTimeout = time.Minute

type Jobs struct {
	service    *service.TrackerService
	metrics    *metrics.Metrics
	logger     *zap.Logger
	windowDays int
}

func NewJobs(svc *service.TrackerService, m *metrics.Metrics, logger *zap.Logger, windowDays int) *Jobs {
	return &Jobs{
		service:    svc,
		metrics:    m,
		logger:     logger,
		windowDays: windowDays,
	}
}

// NewCron builds a cron runner in loc whose recovered job panics are logged
// through logger.
func NewCron(loc *time.Location, logger *zap.Logger) *cron.Cron {
	return cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.PrintfLogger(zap.NewStdLog(logger)))),
	)
}

// Register adds both jobs to c using the configured cron specs.
func (j *Jobs) Register(c *cron.Cron, cfg config.SchedulerConfig) error {
	if _, err := c.AddFunc(cfg.ReminderSpec, j.runWithTimeout(j.SendPaymentReminders)); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	if _, err := c.AddFunc(cfg.OverdueSpec, j.runWithTimeout(j.CheckOverduePayments)); err != nil {
		return fmt.Errorf("schedule overdue job: %w", err)
	}
	return nil
}

func (j *Jobs) runWithTimeout(job func(ctx context.Context) (int, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		_, _ = job(ctx)
	}
}

// SendPaymentReminders logs one reminder per active loan due within the
// window and returns how many were sent.
func (j *Jobs) SendPaymentReminders(ctx context.Context) (int, error) {
	const op = "scheduler.SendPaymentReminders"

	due, err := j.service.DueReminders(ctx, j.windowDays)
	if err != nil {
		j.logger.Error("reminder job failed", zap.String("op", op), zap.Error(err))
		return 0, err
	}

	for _, p := range due {
		j.logger.Info("payment due soon",
			zap.String("op", op),
			zap.String("loan_id", p.LoanID.String()),
			zap.String("loan_name", p.LoanName),
			zap.String("bank_name", p.Lender),
			zap.String("emi_amount", p.MonthlyPayment.String()),
			zap.String("due_date", p.NextPaymentDate.String()),
			zap.Int("days_until_payment", p.DaysUntilPayment),
		)
	}

	j.metrics.ObserveReminders(len(due))
	j.logger.Info("reminder job finished", zap.String("op", op), zap.Int("reminders", len(due)))
	return len(due), nil
}

// CheckOverduePayments logs every overdue active loan and refreshes the
// portfolio gauges. It returns the overdue count.
func (j *Jobs) CheckOverduePayments(ctx context.Context) (int, error) {
	const op = "scheduler.CheckOverduePayments"

	overdue, err := j.service.OverdueLoans(ctx)
	if err != nil {
		j.logger.Error("overdue job failed", zap.String("op", op), zap.Error(err))
		return 0, err
	}

	for _, p := range overdue {
		j.logger.Warn("payment overdue",
			zap.String("op", op),
			zap.String("loan_id", p.LoanID.String()),
			zap.String("loan_name", p.LoanName),
			zap.String("due_date", p.NextPaymentDate.String()),
			zap.Int("days_overdue", -p.DaysUntilPayment),
		)
	}

	summary, err := j.service.GetPortfolio(ctx, 0)
	if err != nil {
		j.logger.Error("portfolio refresh failed", zap.String("op", op), zap.Error(err))
		return len(overdue), err
	}

	j.logger.Info("overdue job finished",
		zap.String("op", op),
		zap.Int("overdue", len(overdue)),
		zap.Float64("payment_health_score", summary.PaymentHealthScore),
		zap.String("health_label", summary.HealthLabel),
	)
	return len(overdue), nil
}
