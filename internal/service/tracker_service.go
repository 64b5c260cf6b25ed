package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/engine"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/portfolio"
	"github.com/segyhp/emi-tracker/internal/repository"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// TrackerService owns the loan collection. Every mutation is a
// load-modify-save of the whole collection, serialized by mu.
type TrackerService struct {
	store      repository.RecordStore
	aggregator *portfolio.Aggregator
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

func NewTrackerService(
	store repository.RecordStore,
	aggregator *portfolio.Aggregator,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *TrackerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerService{
		store:      store,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests and the scheduler.
func (s *TrackerService) WithClock(now func() time.Time) *TrackerService {
	s.now = now
	return s
}

// Now is the service's current time in UTC.
func (s *TrackerService) Now() time.Time {
	return s.now().UTC()
}

// CreateLoan computes the monthly payment for the requested terms and stores
// a new record. A loan created fully paid starts out Completed.
func (s *TrackerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanView, error) {
	const op = "service.CreateLoan"

	now := s.Now()
	loan, err := newLoanRecord(request, now)
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := s.store.SaveLoanRecords(ctx, append(loans, loan)); err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.ObserveLoanCreated(string(loan.Type))
	s.logger.Info("loan created",
		zap.String("op", op),
		zap.String("loan_id", loan.ID.String()),
		zap.String("loan_type", string(loan.Type)),
		zap.String("emi_amount", loan.MonthlyPayment.String()),
	)

	return s.view(loan, now)
}

// newLoanRecord validates a create request and prices the loan.
func newLoanRecord(request *domain.CreateLoanRequest, now time.Time) (*domain.LoanRecord, error) {
	if !request.LoanType.IsValid() {
		return nil, customError.WrapInvalidInput("unknown loan type %q", request.LoanType)
	}
	if request.StartDate.IsZero() {
		return nil, customError.WrapInvalidInput("start date is required")
	}
	if request.PaidInstallments < 0 || request.PaidInstallments > request.TenureMonths {
		return nil, customError.WrapInvalidInput(
			"paid installments %d outside 0..%d", request.PaidInstallments, request.TenureMonths)
	}

	payment, err := engine.ComputeMonthlyPayment(request.Principal, request.InterestRate, request.TenureMonths)
	if err != nil {
		return nil, err
	}

	return &domain.LoanRecord{
		ID:                uuid.New(),
		Name:              request.LoanName,
		Type:              request.LoanType,
		Lender:            request.BankName,
		AccountNumber:     request.AccountNumber,
		Principal:         request.Principal,
		AnnualRatePercent: request.InterestRate,
		TenureMonths:      request.TenureMonths,
		StartDate:         request.StartDate,
		PaidInstallments:  request.PaidInstallments,
		MonthlyPayment:    payment,
		Status:            domain.StatusForProgress(request.PaidInstallments, request.TenureMonths),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ListLoans returns every loan with its derived figures, in store order.
func (s *TrackerService) ListLoans(ctx context.Context) ([]*domain.LoanView, error) {
	const op = "service.ListLoans"

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}

	now := s.Now()
	views := make([]*domain.LoanView, 0, len(loans))
	for _, loan := range loans {
		v, err := s.view(loan, now)
		if err != nil {
			return nil, s.fail(op, err)
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *TrackerService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.LoanView, error) {
	const op = "service.GetLoan"

	loan, err := s.loadLoan(ctx, id)
	if err != nil {
		return nil, s.fail(op, err)
	}
	v, err := s.view(loan, s.Now())
	if err != nil {
		return nil, s.fail(op, err)
	}
	return v, nil
}

// DeleteLoan removes the loan and the payment history recorded against it.
func (s *TrackerService) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	const op = "service.DeleteLoan"

	s.mu.Lock()
	defer s.mu.Unlock()

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return s.fail(op, err)
	}
	idx := indexOf(loans, id)
	if idx < 0 {
		return s.fail(op, customError.WrapLoanNotFound(id.String()))
	}

	payments, err := s.store.LoadPayments(ctx)
	if err != nil {
		return s.fail(op, err)
	}
	kept := payments[:0]
	for _, p := range payments {
		if p.LoanID != id {
			kept = append(kept, p)
		}
	}

	loans = append(loans[:idx], loans[idx+1:]...)
	if err := s.store.SaveLoanRecords(ctx, loans); err != nil {
		return s.fail(op, err)
	}
	if err := s.store.SavePayments(ctx, kept); err != nil {
		return s.fail(op, err)
	}

	s.metrics.ObserveDeleted()
	s.logger.Info("loan deleted", zap.String("op", op), zap.String("loan_id", id.String()))
	return nil
}

// MarkInstallmentPaid settles the next installment of an active loan and
// appends a payment record split per the amortization schedule.
func (s *TrackerService) MarkInstallmentPaid(ctx context.Context, id uuid.UUID) (*domain.MarkPaidResponse, error) {
	const op = "service.MarkInstallmentPaid"

	s.mu.Lock()
	defer s.mu.Unlock()

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	idx := indexOf(loans, id)
	if idx < 0 {
		return nil, s.fail(op, customError.WrapLoanNotFound(id.String()))
	}

	now := s.Now()
	loan := loans[idx].Clone()
	if err := loan.MarkInstallmentPaid(now); err != nil {
		return nil, s.fail(op, err)
	}

	entry, err := engine.ScheduleEntryFor(loan, loan.PaidInstallments)
	if err != nil {
		return nil, s.fail(op, err)
	}

	payments, err := s.store.LoadPayments(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	payment := &domain.PaymentRecord{
		ID:               uuid.New(),
		LoanID:           loan.ID,
		Installment:      loan.PaidInstallments,
		Amount:           loan.MonthlyPayment,
		PaymentDate:      domain.DateOf(now),
		PrincipalAmount:  entry.Principal,
		InterestAmount:   entry.Interest,
		RemainingBalance: entry.Balance,
	}

	loans[idx] = loan
	if err := s.store.SaveLoanRecords(ctx, loans); err != nil {
		return nil, s.fail(op, err)
	}
	if err := s.store.SavePayments(ctx, append(payments, payment)); err != nil {
		return nil, s.fail(op, err)
	}

	completed := loan.Status.Equal(domain.LoanStatusCompleted)
	s.metrics.ObserveInstallmentPaid(completed)
	s.logger.Info("installment paid",
		zap.String("op", op),
		zap.String("loan_id", loan.ID.String()),
		zap.Int("installment", payment.Installment),
		zap.Int("tenure_months", loan.TenureMonths),
		zap.Bool("completed", completed),
	)

	return &domain.MarkPaidResponse{Loan: loan, Payment: payment}, nil
}

// MarkDefaulted records an external default on the loan.
func (s *TrackerService) MarkDefaulted(ctx context.Context, id uuid.UUID) (*domain.LoanRecord, error) {
	const op = "service.MarkDefaulted"

	s.mu.Lock()
	defer s.mu.Unlock()

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	idx := indexOf(loans, id)
	if idx < 0 {
		return nil, s.fail(op, customError.WrapLoanNotFound(id.String()))
	}

	loan := loans[idx].Clone()
	previous := loan.Status
	if err := loan.MarkDefaulted(s.Now()); err != nil {
		return nil, s.fail(op, err)
	}

	loans[idx] = loan
	if err := s.store.SaveLoanRecords(ctx, loans); err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.ObserveDefaulted()
	s.logger.Warn("loan defaulted",
		zap.String("op", op),
		zap.String("loan_id", loan.ID.String()),
		zap.String("previous_status", previous.String()),
	)
	return loan, nil
}

// GetSchedule returns the full amortization table of a stored loan.
func (s *TrackerService) GetSchedule(ctx context.Context, id uuid.UUID) ([]domain.ScheduleEntry, error) {
	const op = "service.GetSchedule"

	loan, err := s.loadLoan(ctx, id)
	if err != nil {
		return nil, s.fail(op, err)
	}
	schedule, err := engine.BuildAmortizationSchedule(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return schedule, nil
}

// GetLoanSummary returns the headline figures for a stored loan's terms.
func (s *TrackerService) GetLoanSummary(ctx context.Context, id uuid.UUID) (*domain.LoanSummary, error) {
	const op = "service.GetLoanSummary"

	loan, err := s.loadLoan(ctx, id)
	if err != nil {
		return nil, s.fail(op, err)
	}
	summary, err := engine.ComputeLoanSummary(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return &summary, nil
}

// Calculate evaluates loan terms without storing anything.
func (s *TrackerService) Calculate(request domain.CalculateRequest) (*domain.CalculateResponse, error) {
	const op = "service.Calculate"

	summary, err := engine.ComputeLoanSummary(request.Principal, request.InterestRate, request.TenureMonths)
	if err != nil {
		return nil, s.fail(op, err)
	}
	schedule, err := engine.BuildAmortizationSchedule(request.Principal, request.InterestRate, request.TenureMonths)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return &domain.CalculateResponse{Summary: summary, Schedule: schedule}, nil
}

// GetPortfolio summarizes every stored loan. A positive upcomingLimit
// overrides the configured cap on upcoming payments.
func (s *TrackerService) GetPortfolio(ctx context.Context, upcomingLimit int) (*domain.PortfolioSummary, error) {
	const op = "service.GetPortfolio"

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}

	aggregator := s.aggregator
	if upcomingLimit > 0 {
		aggregator = aggregator.WithUpcomingLimit(upcomingLimit)
	}

	summary, err := aggregator.Summarize(loans, s.Now())
	if err != nil {
		return nil, s.fail(op, err)
	}

	obligation, _ := summary.TotalMonthlyObligation.Float64()
	s.metrics.ObservePortfolio(obligation, summary.PaymentHealthScore, summary.OverdueCount)
	return summary, nil
}

// ListPayments returns the payment history, optionally for a single loan.
func (s *TrackerService) ListPayments(ctx context.Context, loanID *uuid.UUID) ([]*domain.PaymentRecord, error) {
	const op = "service.ListPayments"

	payments, err := s.store.LoadPayments(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if loanID == nil {
		return payments, nil
	}

	filtered := make([]*domain.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		if p.LoanID == *loanID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// DueReminders lists active loans whose next installment falls due within
// windowDays, today included. Overdue loans are not reminders.
func (s *TrackerService) DueReminders(ctx context.Context, windowDays int) ([]domain.UpcomingPayment, error) {
	const op = "service.DueReminders"

	upcoming, err := s.allUpcoming(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}

	due := make([]domain.UpcomingPayment, 0, len(upcoming))
	for _, p := range upcoming {
		if p.DaysUntilPayment >= 0 && p.DaysUntilPayment <= windowDays {
			due = append(due, p)
		}
	}
	return due, nil
}

// OverdueLoans lists active loans whose next installment is past due,
// most overdue first.
func (s *TrackerService) OverdueLoans(ctx context.Context) ([]domain.UpcomingPayment, error) {
	const op = "service.OverdueLoans"

	upcoming, err := s.allUpcoming(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}

	overdue := make([]domain.UpcomingPayment, 0)
	for _, p := range upcoming {
		if p.IsOverdue {
			overdue = append(overdue, p)
		}
	}
	s.metrics.ObserveOverdue(len(overdue))
	return overdue, nil
}

// SeedSampleData stores a few demo loans when the store is empty and reports
// how many were added. The emptiness check and the save happen under one lock.
func (s *TrackerService) SeedSampleData(ctx context.Context) (int, error) {
	const op = "service.SeedSampleData"

	now := s.Now()
	requests := sampleLoans()
	seeded := make([]*domain.LoanRecord, 0, len(requests))
	for _, request := range requests {
		loan, err := newLoanRecord(request, now)
		if err != nil {
			return 0, s.fail(op, err)
		}
		seeded = append(seeded, loan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return 0, s.fail(op, err)
	}
	if len(loans) > 0 {
		return 0, nil
	}
	if err := s.store.SaveLoanRecords(ctx, seeded); err != nil {
		return 0, s.fail(op, err)
	}

	for _, loan := range seeded {
		s.metrics.ObserveLoanCreated(string(loan.Type))
	}
	s.logger.Info("sample data seeded", zap.String("op", op), zap.Int("loans", len(seeded)))
	return len(seeded), nil
}

func (s *TrackerService) allUpcoming(ctx context.Context) ([]domain.UpcomingPayment, error) {
	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, err
	}
	return portfolio.UpcomingPayments(loans, s.Now(), 0), nil
}

func (s *TrackerService) loadLoan(ctx context.Context, id uuid.UUID) (*domain.LoanRecord, error) {
	loans, err := s.store.LoadLoanRecords(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(loans, id)
	if idx < 0 {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	return loans[idx], nil
}

func (s *TrackerService) view(loan *domain.LoanRecord, now time.Time) (*domain.LoanView, error) {
	m, err := engine.Derive(loan, now)
	if err != nil {
		return nil, err
	}
	return &domain.LoanView{Loan: loan, Metrics: m}, nil
}

// fail records err against op. Caller mistakes log at warn, everything else
// at error.
func (s *TrackerService) fail(op string, err error) error {
	code := customError.CodeOf(err)
	s.metrics.ObserveError(code)

	fields := []zap.Field{zap.String("op", op), zap.String("code", code), zap.Error(err)}
	switch {
	case errors.Is(err, customError.ErrInvariantViolation), errors.Is(err, customError.ErrStoreFailure), code == "":
		s.logger.Error("operation failed", fields...)
	default:
		s.logger.Warn("operation rejected", fields...)
	}
	return err
}

func indexOf(loans []*domain.LoanRecord, id uuid.UUID) int {
	for i, loan := range loans {
		if loan.ID == id {
			return i
		}
	}
	return -1
}
