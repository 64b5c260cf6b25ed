// Package portfolio reduces a collection of loan records into the dashboard
// figures. It never mutates the records it is given.
package portfolio

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/engine"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

const (
	DefaultUpcomingLimit  = 5
	DefaultOverduePenalty = 5.0

	excellentThreshold = 80.0
	goodThreshold      = 60.0
)

// Options are the policy knobs of the aggregator.
type Options struct {
	// UpcomingLimit caps how many upcoming payments are surfaced. Zero or
	// negative means no cap.
	UpcomingLimit int
	// OverduePenalty is subtracted from the health score per overdue loan.
	// It is a heuristic weight, not a calibrated risk figure.
	OverduePenalty float64
}

func DefaultOptions() Options {
	return Options{
		UpcomingLimit:  DefaultUpcomingLimit,
		OverduePenalty: DefaultOverduePenalty,
	}
}

type Aggregator struct {
	opts Options
}

func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{opts: opts}
}

func (a *Aggregator) Options() Options {
	return a.opts
}

// WithUpcomingLimit returns a copy of the aggregator with a different cap.
func (a *Aggregator) WithUpcomingLimit(n int) *Aggregator {
	opts := a.opts
	opts.UpcomingLimit = n
	return NewAggregator(opts)
}

// Summarize computes every portfolio figure as of now.
func (a *Aggregator) Summarize(loans []*domain.LoanRecord, now time.Time) (*domain.PortfolioSummary, error) {
	remaining, err := TotalRemaining(loans)
	if err != nil {
		return nil, err
	}
	interestPaid, err := TotalInterestPaidToDate(loans)
	if err != nil {
		return nil, err
	}
	avgMonths, err := AverageMonthsRemaining(loans)
	if err != nil {
		return nil, err
	}

	upcoming := UpcomingPayments(loans, now, 0)
	overdue := countOverdue(upcoming)
	score := healthScore(loans, overdue, a.opts.OverduePenalty)

	paid := TotalPaidAmount(loans)
	summary := &domain.PortfolioSummary{
		LoanCount:               len(loans),
		TotalMonthlyObligation:  TotalMonthlyObligation(loans),
		TotalPrincipal:          TotalPrincipal(loans),
		TotalPaidAmount:         paid,
		TotalRemaining:          remaining,
		TotalInterestPaidToDate: interestPaid,
		AverageInterestRate:     AverageInterestRate(loans),
		CompletionPercent:       utils.Percent(paid, paid.Add(remaining)),
		AverageMonthsRemaining:  avgMonths,
		DebtFreeDate:            DebtFreeDate(loans),
		LoanTypeDistribution:    LoanTypeDistribution(loans),
		UpcomingPayments:        limit(upcoming, a.opts.UpcomingLimit),
		OverdueCount:            overdue,
		PaymentHealthScore:      score,
		HealthLabel:             HealthLabel(score),
	}

	for _, loan := range loans {
		switch {
		case loan.Status.Equal(domain.LoanStatusActive):
			summary.ActiveCount++
		case loan.Status.Equal(domain.LoanStatusCompleted):
			summary.CompletedCount++
		case loan.Status.Equal(domain.LoanStatusDefaulted):
			summary.DefaultedCount++
		}
	}

	return summary, nil
}

// PaymentHealthScore applies the aggregator's penalty policy.
func (a *Aggregator) PaymentHealthScore(loans []*domain.LoanRecord, now time.Time) float64 {
	return PaymentHealthScore(loans, now, a.opts.OverduePenalty)
}

// UpcomingPayments applies the aggregator's cap.
func (a *Aggregator) UpcomingPayments(loans []*domain.LoanRecord, now time.Time) []domain.UpcomingPayment {
	return UpcomingPayments(loans, now, a.opts.UpcomingLimit)
}

func isActive(loan *domain.LoanRecord) bool {
	return loan.Status.Equal(domain.LoanStatusActive)
}

// TotalMonthlyObligation sums the installments of active loans only.
func TotalMonthlyObligation(loans []*domain.LoanRecord) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		if isActive(loan) {
			total = total.Add(loan.MonthlyPayment)
		}
	}
	return total
}

func TotalPrincipal(loans []*domain.LoanRecord) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(loan.Principal)
	}
	return total
}

func TotalPaidAmount(loans []*domain.LoanRecord) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(loan.PaidAmount())
	}
	return total
}

func TotalRemaining(loans []*domain.LoanRecord) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, loan := range loans {
		remaining, err := engine.RemainingAmount(loan)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(remaining)
	}
	return total, nil
}

func TotalInterestPaidToDate(loans []*domain.LoanRecord) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, loan := range loans {
		interest, err := engine.InterestPaidToDate(loan)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(interest)
	}
	return total, nil
}

// AverageInterestRate is the unweighted mean rate, zero for no loans.
func AverageInterestRate(loans []*domain.LoanRecord) decimal.Decimal {
	if len(loans) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, loan := range loans {
		sum = sum.Add(loan.AnnualRatePercent)
	}
	return sum.Div(decimal.NewFromInt(int64(len(loans))))
}

// AverageMonthsRemaining averages over active loans, zero when none are active.
func AverageMonthsRemaining(loans []*domain.LoanRecord) (decimal.Decimal, error) {
	var count, months int
	for _, loan := range loans {
		if !isActive(loan) {
			continue
		}
		m, err := engine.MonthsRemaining(loan)
		if err != nil {
			return decimal.Zero, err
		}
		months += m
		count++
	}
	if count == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(int64(count))), nil
}

// DebtFreeDate is the latest payoff date among active loans.
func DebtFreeDate(loans []*domain.LoanRecord) *domain.Date {
	var latest *domain.Date
	for _, loan := range loans {
		if !isActive(loan) {
			continue
		}
		payoff := engine.PayoffDate(loan)
		if latest == nil || payoff.After(latest.Time) {
			latest = &payoff
		}
	}
	return latest
}

// LoanTypeDistribution groups loans by type in first-seen order.
func LoanTypeDistribution(loans []*domain.LoanRecord) []domain.LoanTypeBucket {
	buckets := make([]domain.LoanTypeBucket, 0)
	index := make(map[domain.LoanType]int)

	for _, loan := range loans {
		i, ok := index[loan.Type]
		if !ok {
			i = len(buckets)
			index[loan.Type] = i
			buckets = append(buckets, domain.LoanTypeBucket{
				Type:           loan.Type,
				Principal:      decimal.Zero,
				MonthlyPayment: decimal.Zero,
			})
		}
		buckets[i].Count++
		buckets[i].Principal = buckets[i].Principal.Add(loan.Principal)
		buckets[i].MonthlyPayment = buckets[i].MonthlyPayment.Add(loan.MonthlyPayment)
	}
	return buckets
}

// UpcomingPayments lists the next installment of every active loan, soonest
// first, so overdue installments lead. A positive n caps the result.
func UpcomingPayments(loans []*domain.LoanRecord, now time.Time, n int) []domain.UpcomingPayment {
	upcoming := make([]domain.UpcomingPayment, 0, len(loans))
	for _, loan := range loans {
		if !isActive(loan) {
			continue
		}
		next := engine.NextPaymentDate(loan.StartDate, loan.PaidInstallments)
		upcoming = append(upcoming, domain.UpcomingPayment{
			LoanID:           loan.ID,
			LoanName:         loan.Name,
			LoanType:         loan.Type,
			Lender:           loan.Lender,
			MonthlyPayment:   loan.MonthlyPayment,
			NextPaymentDate:  next,
			DaysUntilPayment: utils.DaysUntil(next.Time, now),
			IsOverdue:        utils.IsDateOverdue(next.Time, now),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntilPayment < upcoming[j].DaysUntilPayment
	})
	return limit(upcoming, n)
}

func limit(upcoming []domain.UpcomingPayment, n int) []domain.UpcomingPayment {
	if n > 0 && len(upcoming) > n {
		return upcoming[:n]
	}
	return upcoming
}

func countOverdue(upcoming []domain.UpcomingPayment) int {
	count := 0
	for _, p := range upcoming {
		if p.IsOverdue {
			count++
		}
	}
	return count
}

// OverdueCount is the number of active loans whose next installment is past due.
func OverdueCount(loans []*domain.LoanRecord, now time.Time) int {
	return countOverdue(UpcomingPayments(loans, now, 0))
}

// PaymentHealthScore is a 0..100 heuristic: the share of all installments
// already paid, minus penalty points per overdue loan.
func PaymentHealthScore(loans []*domain.LoanRecord, now time.Time, penalty float64) float64 {
	return healthScore(loans, OverdueCount(loans, now), penalty)
}

func healthScore(loans []*domain.LoanRecord, overdue int, penalty float64) float64 {
	var paid, tenure int
	for _, loan := range loans {
		paid += loan.PaidInstallments
		tenure += loan.TenureMonths
	}

	base := 0.0
	if tenure > 0 {
		base = float64(paid) / float64(tenure) * 100
	}
	score := base - penalty*float64(overdue)
	return min(100, max(0, score))
}

func HealthLabel(score float64) string {
	switch {
	case score >= excellentThreshold:
		return domain.HealthExcellent
	case score >= goodThreshold:
		return domain.HealthGood
	default:
		return domain.HealthNeedsAttention
	}
}
