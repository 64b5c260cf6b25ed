package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

func newRecord(t *testing.T, principal int64, annualRate string, tenure, paid int) *domain.LoanRecord {
	t.Helper()
	payment, err := ComputeMonthlyPayment(dec(principal), rate(annualRate), tenure)
	require.NoError(t, err)
	return &domain.LoanRecord{
		ID:                uuid.New(),
		Name:              "test loan",
		Type:              domain.LoanTypePersonal,
		Principal:         dec(principal),
		AnnualRatePercent: rate(annualRate),
		TenureMonths:      tenure,
		StartDate:         domain.NewDate(2024, time.January, 15),
		PaidInstallments:  paid,
		MonthlyPayment:    payment,
		Status:            domain.StatusForProgress(paid, tenure),
	}
}

func TestMonthsRemainingAndRemainingAmount(t *testing.T) {
	loan := newRecord(t, 500000, "12", 36, 10)

	months, err := MonthsRemaining(loan)
	require.NoError(t, err)
	assert.Equal(t, 26, months)

	remaining, err := RemainingAmount(loan)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(dec(26*16607)))

	loan.PaidInstallments = 36
	months, err = MonthsRemaining(loan)
	require.NoError(t, err)
	assert.Equal(t, 0, months)

	remaining, err = RemainingAmount(loan)
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestMonthsRemaining_InvariantViolation(t *testing.T) {
	loan := newRecord(t, 120000, "0", 12, 0)
	loan.PaidInstallments = 15

	_, err := MonthsRemaining(loan)
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)

	_, err = RemainingAmount(loan)
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)

	_, err = InterestPaidToDate(loan)
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)

	loan.PaidInstallments = -1
	_, err = MonthsRemaining(loan)
	assert.ErrorIs(t, err, customError.ErrInvariantViolation)
}

func TestInterestPaidToDate(t *testing.T) {
	tests := []struct {
		name      string
		principal int64
		rate      string
		tenure    int
		paid      int
		expected  int64
	}{
		{"nothing paid", 500000, "12", 36, 0, 0},
		{"first installment", 500000, "12", 36, 1, 5000},
		{"two installments", 500000, "12", 36, 2, 9884},
		{"first year", 500000, "12", 36, 12, 52079},
		{"fully repaid", 100000, "10", 12, 12, 5499},
		{"interest free", 120000, "0", 12, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := newRecord(t, tt.principal, tt.rate, tt.tenure, tt.paid)
			interest, err := InterestPaidToDate(loan)
			require.NoError(t, err)
			assert.True(t, interest.Equal(dec(tt.expected)), "Expected %d, but got %v", tt.expected, interest)
		})
	}
}

func TestInterestPaidToDate_MatchesSchedulePrefix(t *testing.T) {
	loan := newRecord(t, 2500000, "8.5", 240, 97)

	schedule, err := BuildAmortizationSchedule(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, entry := range schedule[:loan.PaidInstallments] {
		expected = expected.Add(entry.Interest)
	}

	interest, err := InterestPaidToDate(loan)
	require.NoError(t, err)
	assert.True(t, interest.Equal(expected), "Expected %v, but got %v", expected, interest)
}

func TestScheduleEntryFor(t *testing.T) {
	loan := newRecord(t, 500000, "12", 36, 0)

	entry, err := ScheduleEntryFor(loan, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Month)
	assert.True(t, entry.Interest.Equal(dec(4884)))
	assert.True(t, entry.Principal.Equal(dec(11723)))
	assert.True(t, entry.Balance.Equal(dec(476670)))

	last, err := ScheduleEntryFor(loan, 36)
	require.NoError(t, err)
	assert.True(t, last.Balance.IsZero())

	_, err = ScheduleEntryFor(loan, 0)
	assert.ErrorIs(t, err, customError.ErrInvalidInput)
	_, err = ScheduleEntryFor(loan, 37)
	assert.ErrorIs(t, err, customError.ErrInvalidInput)
}

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name     string
		start    domain.Date
		paid     int
		expected domain.Date
	}{
		{"month end into leap february", domain.NewDate(2024, time.January, 31), 0, domain.NewDate(2024, time.February, 29)},
		{"month end into february", domain.NewDate(2023, time.January, 31), 0, domain.NewDate(2023, time.February, 28)},
		{"month end into april", domain.NewDate(2024, time.January, 31), 2, domain.NewDate(2024, time.April, 30)},
		{"mid month", domain.NewDate(2023, time.June, 1), 6, domain.NewDate(2024, time.January, 1)},
		{"after twelve payments", domain.NewDate(2023, time.January, 1), 12, domain.NewDate(2024, time.February, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected.String(), NextPaymentDate(tt.start, tt.paid).String())
		})
	}
}

func TestPayoffDate(t *testing.T) {
	loan := newRecord(t, 120000, "0", 12, 0)
	assert.Equal(t, "2025-01-15", PayoffDate(loan).String())
}

func TestDerive(t *testing.T) {
	loan := newRecord(t, 120000, "0", 12, 3)
	now := time.Date(2024, time.April, 20, 10, 0, 0, 0, time.UTC)

	metrics, err := Derive(loan, now)
	require.NoError(t, err)

	assert.Equal(t, 9, metrics.MonthsRemaining)
	assert.True(t, metrics.PaidAmount.Equal(dec(30000)))
	assert.True(t, metrics.RemainingAmount.Equal(dec(90000)))
	assert.True(t, metrics.TotalPayable.Equal(dec(120000)))
	assert.True(t, metrics.InterestPaidToDate.IsZero())
	assert.Equal(t, "2024-05-15", metrics.NextPaymentDate.String())
	assert.Equal(t, "2025-01-15", metrics.PayoffDate.String())
	assert.Equal(t, 25, metrics.DaysUntilPayment)
	assert.True(t, metrics.ProgressPercent.Equal(dec(25)))
}

func TestCheckInvariants(t *testing.T) {
	t.Run("valid active record", func(t *testing.T) {
		assert.NoError(t, CheckInvariants(newRecord(t, 500000, "8.5", 240, 12)))
	})

	t.Run("valid completed record", func(t *testing.T) {
		assert.NoError(t, CheckInvariants(newRecord(t, 120000, "0", 12, 12)))
	})

	t.Run("defaulted record with any progress", func(t *testing.T) {
		loan := newRecord(t, 120000, "0", 12, 4)
		loan.Status = domain.LoanStatusDefaulted
		assert.NoError(t, CheckInvariants(loan))
	})

	t.Run("stale monthly payment", func(t *testing.T) {
		loan := newRecord(t, 500000, "8.5", 240, 0)
		loan.MonthlyPayment = dec(4341)
		assert.ErrorIs(t, CheckInvariants(loan), customError.ErrInvariantViolation)
	})

	t.Run("overpaid", func(t *testing.T) {
		loan := newRecord(t, 120000, "0", 12, 12)
		loan.PaidInstallments = 15
		assert.ErrorIs(t, CheckInvariants(loan), customError.ErrInvariantViolation)
	})

	t.Run("completed but unpaid installments", func(t *testing.T) {
		loan := newRecord(t, 120000, "0", 12, 4)
		loan.Status = domain.LoanStatusCompleted
		assert.ErrorIs(t, CheckInvariants(loan), customError.ErrInvariantViolation)
	})

	t.Run("missing status", func(t *testing.T) {
		loan := newRecord(t, 120000, "0", 12, 4)
		loan.Status = domain.LoanStatus{}
		assert.ErrorIs(t, CheckInvariants(loan), customError.ErrInvariantViolation)
	})

	t.Run("invalid terms", func(t *testing.T) {
		loan := newRecord(t, 120000, "0", 12, 4)
		loan.Principal = decimal.Zero
		assert.ErrorIs(t, CheckInvariants(loan), customError.ErrInvariantViolation)
	})
}
