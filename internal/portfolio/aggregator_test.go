package portfolio

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/engine"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

type loanSpec struct {
	name      string
	loanType  domain.LoanType
	principal int64
	rate      string
	tenure    int
	paid      int
	start     domain.Date
}

func build(t *testing.T, s loanSpec) *domain.LoanRecord {
	t.Helper()
	principal := decimal.NewFromInt(s.principal)
	r := decimal.RequireFromString(s.rate)
	payment, err := engine.ComputeMonthlyPayment(principal, r, s.tenure)
	require.NoError(t, err)
	return &domain.LoanRecord{
		ID:                uuid.New(),
		Name:              s.name,
		Type:              s.loanType,
		Principal:         principal,
		AnnualRatePercent: r,
		TenureMonths:      s.tenure,
		StartDate:         s.start,
		PaidInstallments:  s.paid,
		MonthlyPayment:    payment,
		Status:            domain.StatusForProgress(s.paid, s.tenure),
	}
}

// withPayment builds a record whose stored payment is set directly.
func withPayment(payment int64, status domain.LoanStatus) *domain.LoanRecord {
	return &domain.LoanRecord{
		ID:                uuid.New(),
		Type:              domain.LoanTypePersonal,
		Principal:         decimal.NewFromInt(payment * 10),
		AnnualRatePercent: decimal.Zero,
		TenureMonths:      10,
		StartDate:         domain.NewDate(2024, time.February, 20),
		MonthlyPayment:    decimal.NewFromInt(payment),
		Status:            status,
	}
}

func TestTotalMonthlyObligation_ActiveOnly(t *testing.T) {
	loans := []*domain.LoanRecord{
		withPayment(25000, domain.LoanStatusActive),
		withPayment(17000, domain.LoanStatusActive),
	}
	assert.True(t, TotalMonthlyObligation(loans).Equal(decimal.NewFromInt(42000)))

	completed := withPayment(9000, domain.LoanStatusCompleted)
	completed.PaidInstallments = completed.TenureMonths
	loans = append(loans, completed)
	assert.True(t, TotalMonthlyObligation(loans).Equal(decimal.NewFromInt(42000)))

	loans = append(loans, withPayment(3000, domain.LoanStatusDefaulted))
	assert.True(t, TotalMonthlyObligation(loans).Equal(decimal.NewFromInt(42000)))
}

func TestTotals(t *testing.T) {
	loans := []*domain.LoanRecord{
		build(t, loanSpec{"home", domain.LoanTypeHome, 500000, "12", 36, 2, domain.NewDate(2024, time.January, 5)}),
		build(t, loanSpec{"gadget", domain.LoanTypePersonal, 120000, "0", 12, 12, domain.NewDate(2023, time.January, 5)}),
	}

	assert.True(t, TotalPrincipal(loans).Equal(decimal.NewFromInt(620000)))
	assert.True(t, TotalPaidAmount(loans).Equal(decimal.NewFromInt(2*16607+120000)))

	remaining, err := TotalRemaining(loans)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(34*16607)))

	interest, err := TotalInterestPaidToDate(loans)
	require.NoError(t, err)
	assert.True(t, interest.Equal(decimal.NewFromInt(9884)))
}

func TestTotals_PropagateInvariantViolation(t *testing.T) {
	broken := withPayment(10000, domain.LoanStatusActive)
	broken.PaidInstallments = 15

	_, err := TotalRemaining([]*domain.LoanRecord{broken})
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)

	_, err = TotalInterestPaidToDate([]*domain.LoanRecord{broken})
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)

	_, err = NewAggregator(DefaultOptions()).Summarize([]*domain.LoanRecord{broken}, now)
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)
}

func TestAverageInterestRate(t *testing.T) {
	assert.True(t, AverageInterestRate(nil).IsZero())

	loans := []*domain.LoanRecord{
		build(t, loanSpec{"a", domain.LoanTypeHome, 100000, "8.5", 12, 0, domain.NewDate(2024, time.January, 1)}),
		build(t, loanSpec{"b", domain.LoanTypeCar, 100000, "10.5", 12, 0, domain.NewDate(2024, time.January, 1)}),
		build(t, loanSpec{"c", domain.LoanTypeBusiness, 100000, "12", 12, 0, domain.NewDate(2024, time.January, 1)}),
	}
	avg := AverageInterestRate(loans)
	assert.True(t, avg.Equal(decimal.RequireFromString("10.3333333333333333")), "got %s", avg)
}

func TestLoanTypeDistribution_InsertionOrder(t *testing.T) {
	start := domain.NewDate(2024, time.January, 1)
	loans := []*domain.LoanRecord{
		build(t, loanSpec{"car 1", domain.LoanTypeCar, 800000, "10.5", 60, 0, start}),
		build(t, loanSpec{"home", domain.LoanTypeHome, 2500000, "8.5", 240, 0, start}),
		build(t, loanSpec{"car 2", domain.LoanTypeCar, 500000, "12", 36, 0, start}),
	}

	buckets := LoanTypeDistribution(loans)
	require.Len(t, buckets, 2)

	assert.Equal(t, domain.LoanTypeCar, buckets[0].Type)
	assert.Equal(t, 2, buckets[0].Count)
	assert.True(t, buckets[0].Principal.Equal(decimal.NewFromInt(1300000)))
	assert.True(t, buckets[0].MonthlyPayment.Equal(decimal.NewFromInt(17195+16607)))

	assert.Equal(t, domain.LoanTypeHome, buckets[1].Type)
	assert.Equal(t, 1, buckets[1].Count)
	assert.True(t, buckets[1].MonthlyPayment.Equal(decimal.NewFromInt(21696)))

	assert.Empty(t, LoanTypeDistribution(nil))
}

func TestUpcomingPayments(t *testing.T) {
	// Next due dates: overdue Mar 1, due Mar 15, due Apr 5, completed loan skipped.
	overdue := build(t, loanSpec{"overdue", domain.LoanTypeCar, 120000, "0", 12, 1, domain.NewDate(2024, time.January, 1)})
	soon := build(t, loanSpec{"soon", domain.LoanTypeHome, 120000, "0", 12, 0, domain.NewDate(2024, time.February, 15)})
	later := build(t, loanSpec{"later", domain.LoanTypePersonal, 120000, "0", 12, 2, domain.NewDate(2024, time.January, 5)})
	done := build(t, loanSpec{"done", domain.LoanTypeOther, 120000, "0", 12, 12, domain.NewDate(2023, time.January, 1)})

	loans := []*domain.LoanRecord{later, done, soon, overdue}

	all := UpcomingPayments(loans, now, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "overdue", all[0].LoanName)
	assert.Equal(t, "2024-03-01", all[0].NextPaymentDate.String())
	assert.Equal(t, -9, all[0].DaysUntilPayment)
	assert.True(t, all[0].IsOverdue)
	assert.Equal(t, "soon", all[1].LoanName)
	assert.Equal(t, 5, all[1].DaysUntilPayment)
	assert.False(t, all[1].IsOverdue)
	assert.Equal(t, "later", all[2].LoanName)
	assert.Equal(t, 26, all[2].DaysUntilPayment)

	capped := UpcomingPayments(loans, now, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "soon", capped[1].LoanName)

	agg := NewAggregator(Options{UpcomingLimit: 1, OverduePenalty: 5})
	require.Len(t, agg.UpcomingPayments(loans, now), 1)

	assert.Equal(t, 1, OverdueCount(loans, now))
}

func TestPaymentHealthScore(t *testing.T) {
	t.Run("fully paid loan scores 100", func(t *testing.T) {
		loan := build(t, loanSpec{"done", domain.LoanTypeOther, 120000, "0", 12, 12, domain.NewDate(2023, time.January, 1)})
		assert.Equal(t, 100.0, PaymentHealthScore([]*domain.LoanRecord{loan}, now, DefaultOverduePenalty))
	})

	t.Run("empty portfolio scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, PaymentHealthScore(nil, now, DefaultOverduePenalty))
	})

	t.Run("share of installments paid", func(t *testing.T) {
		// 3 + 6 paid of 12 + 24, nothing overdue.
		a := build(t, loanSpec{"a", domain.LoanTypeCar, 120000, "0", 12, 3, domain.NewDate(2023, time.December, 20)})
		b := build(t, loanSpec{"b", domain.LoanTypeCar, 240000, "0", 24, 6, domain.NewDate(2023, time.September, 25)})
		assert.Equal(t, 25.0, PaymentHealthScore([]*domain.LoanRecord{a, b}, now, DefaultOverduePenalty))
	})

	t.Run("each overdue loan costs the penalty", func(t *testing.T) {
		// 9 of 12 paid, next due 2023-10-01, long overdue.
		late := build(t, loanSpec{"late", domain.LoanTypeCar, 120000, "0", 12, 9, domain.NewDate(2023, time.January, 1)})
		assert.Equal(t, 70.0, PaymentHealthScore([]*domain.LoanRecord{late}, now, DefaultOverduePenalty))
		assert.Equal(t, 65.0, PaymentHealthScore([]*domain.LoanRecord{late}, now, 10))
	})

	t.Run("clamped at zero", func(t *testing.T) {
		late := build(t, loanSpec{"late", domain.LoanTypeCar, 120000, "0", 12, 0, domain.NewDate(2023, time.January, 1)})
		assert.Equal(t, 0.0, PaymentHealthScore([]*domain.LoanRecord{late}, now, DefaultOverduePenalty))
	})
}

func TestHealthLabel(t *testing.T) {
	assert.Equal(t, domain.HealthExcellent, HealthLabel(100))
	assert.Equal(t, domain.HealthExcellent, HealthLabel(80))
	assert.Equal(t, domain.HealthGood, HealthLabel(60))
	assert.Equal(t, domain.HealthNeedsAttention, HealthLabel(59.9))
}

func TestSummarize(t *testing.T) {
	home := build(t, loanSpec{"home", domain.LoanTypeHome, 500000, "12", 36, 2, domain.NewDate(2024, time.January, 5)})
	car := build(t, loanSpec{"car", domain.LoanTypeCar, 120000, "0", 12, 1, domain.NewDate(2024, time.January, 1)})
	done := build(t, loanSpec{"done", domain.LoanTypeHome, 120000, "0", 12, 12, domain.NewDate(2023, time.January, 1)})
	defaulted := build(t, loanSpec{"bad", domain.LoanTypeOther, 120000, "0", 12, 4, domain.NewDate(2023, time.May, 1)})
	defaulted.Status = domain.LoanStatusDefaulted

	loans := []*domain.LoanRecord{home, car, done, defaulted}
	summary, err := NewAggregator(DefaultOptions()).Summarize(loans, now)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.LoanCount)
	assert.Equal(t, 2, summary.ActiveCount)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Equal(t, 1, summary.DefaultedCount)
	assert.True(t, summary.TotalMonthlyObligation.Equal(decimal.NewFromInt(16607+10000)))
	assert.True(t, summary.TotalPrincipal.Equal(decimal.NewFromInt(860000)))
	assert.True(t, summary.TotalInterestPaidToDate.Equal(decimal.NewFromInt(9884)))
	assert.True(t, summary.AverageMonthsRemaining.Equal(decimal.NewFromFloat(22.5)), "got %s", summary.AverageMonthsRemaining)
	require.NotNil(t, summary.DebtFreeDate)
	assert.Equal(t, "2027-01-05", summary.DebtFreeDate.String())

	// car is overdue (due 2024-03-01); home is due 2024-04-05.
	assert.Equal(t, 1, summary.OverdueCount)
	require.Len(t, summary.UpcomingPayments, 2)
	assert.Equal(t, "car", summary.UpcomingPayments[0].LoanName)

	// (2+1+12+4) / (36+12+12+12) * 100 - 5
	expected := 19.0/72.0*100 - 5
	assert.InDelta(t, expected, summary.PaymentHealthScore, 1e-9)
	assert.Equal(t, domain.HealthNeedsAttention, summary.HealthLabel)

	require.Len(t, summary.LoanTypeDistribution, 3)
	assert.Equal(t, domain.LoanTypeHome, summary.LoanTypeDistribution[0].Type)
	assert.Equal(t, 2, summary.LoanTypeDistribution[0].Count)

	paid := summary.TotalPaidAmount
	assert.True(t, paid.Equal(decimal.NewFromInt(2*16607+10000+120000+40000)))
	assert.True(t, summary.CompletionPercent.IsPositive())
}

func TestSummarize_Empty(t *testing.T) {
	summary, err := NewAggregator(DefaultOptions()).Summarize(nil, now)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.LoanCount)
	assert.True(t, summary.TotalMonthlyObligation.IsZero())
	assert.True(t, summary.AverageInterestRate.IsZero())
	assert.True(t, summary.CompletionPercent.IsZero())
	assert.Nil(t, summary.DebtFreeDate)
	assert.Empty(t, summary.UpcomingPayments)
	assert.Equal(t, 0.0, summary.PaymentHealthScore)
}
