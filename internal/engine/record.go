package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// MonthsRemaining returns the unpaid installment count.
func MonthsRemaining(loan *domain.LoanRecord) (int, error) {
	if loan.PaidInstallments < 0 || loan.PaidInstallments > loan.TenureMonths {
		return 0, customError.WrapInvariantViolation(
			"loan %s has %d paid installments for a %d month tenure",
			loan.ID, loan.PaidInstallments, loan.TenureMonths,
		)
	}
	return loan.TenureMonths - loan.PaidInstallments, nil
}

// RemainingAmount is the unpaid installments at the stored monthly payment.
func RemainingAmount(loan *domain.LoanRecord) (decimal.Decimal, error) {
	months, err := MonthsRemaining(loan)
	if err != nil {
		return decimal.Zero, err
	}
	return loan.MonthlyPayment.Mul(decimal.NewFromInt(int64(months))), nil
}

// InterestPaidToDate replays the schedule over the paid installments and sums
// the interest column. There is no closed form that matches the schedule's
// per-row rounding.
func InterestPaidToDate(loan *domain.LoanRecord) (decimal.Decimal, error) {
	if _, err := MonthsRemaining(loan); err != nil {
		return decimal.Zero, err
	}
	if err := validateTerms(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, entry := range walkSchedule(loan.Principal, loan.AnnualRatePercent, loan.MonthlyPayment, loan.TenureMonths, loan.PaidInstallments) {
		total = total.Add(entry.Interest)
	}
	return total, nil
}

// ScheduleEntryFor returns the schedule row of a single 1-based installment.
func ScheduleEntryFor(loan *domain.LoanRecord, installment int) (domain.ScheduleEntry, error) {
	if installment < 1 || installment > loan.TenureMonths {
		return domain.ScheduleEntry{}, customError.WrapInvalidInput(
			"installment %d outside tenure of %d months", installment, loan.TenureMonths)
	}
	if err := validateTerms(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths); err != nil {
		return domain.ScheduleEntry{}, err
	}
	rows := walkSchedule(loan.Principal, loan.AnnualRatePercent, loan.MonthlyPayment, loan.TenureMonths, installment)
	return rows[installment-1], nil
}

// NextPaymentDate is the due date of the installment after paidInstallments.
// Day-of-month is kept where the target month has it, otherwise clamped to
// the month's last day.
func NextPaymentDate(startDate domain.Date, paidInstallments int) domain.Date {
	return domain.Date{Time: utils.CalculateDueDate(startDate.Time, paidInstallments+1)}
}

// PayoffDate is the due date of the final installment.
func PayoffDate(loan *domain.LoanRecord) domain.Date {
	return NextPaymentDate(loan.StartDate, loan.TenureMonths-1)
}

// Derive computes every point-in-time figure for loan as of now.
func Derive(loan *domain.LoanRecord, now time.Time) (domain.LoanMetrics, error) {
	months, err := MonthsRemaining(loan)
	if err != nil {
		return domain.LoanMetrics{}, err
	}
	remaining, err := RemainingAmount(loan)
	if err != nil {
		return domain.LoanMetrics{}, err
	}
	interestPaid, err := InterestPaidToDate(loan)
	if err != nil {
		return domain.LoanMetrics{}, err
	}

	next := NextPaymentDate(loan.StartDate, loan.PaidInstallments)
	return domain.LoanMetrics{
		MonthsRemaining:    months,
		PaidAmount:         loan.PaidAmount(),
		RemainingAmount:    remaining,
		TotalPayable:       loan.TotalPayable(),
		InterestPaidToDate: interestPaid,
		NextPaymentDate:    next,
		PayoffDate:         PayoffDate(loan),
		DaysUntilPayment:   utils.DaysUntil(next.Time, now),
		ProgressPercent: utils.Percent(
			decimal.NewFromInt(int64(loan.PaidInstallments)),
			decimal.NewFromInt(int64(loan.TenureMonths)),
		),
	}, nil
}

// CheckInvariants validates a stored record before any computation trusts it.
func CheckInvariants(loan *domain.LoanRecord) error {
	if loan.Status.IsZero() {
		return customError.WrapInvariantViolation("loan %s has no status", loan.ID)
	}
	if _, err := MonthsRemaining(loan); err != nil {
		return err
	}

	expected, err := ComputeMonthlyPayment(loan.Principal, loan.AnnualRatePercent, loan.TenureMonths)
	if err != nil {
		return customError.WrapInvariantViolation("loan %s has invalid terms: %v", loan.ID, err)
	}
	if !expected.Equal(loan.MonthlyPayment) {
		return customError.WrapInvariantViolation(
			"loan %s stores monthly payment %s, terms give %s", loan.ID, loan.MonthlyPayment, expected)
	}

	if !loan.Status.Equal(domain.LoanStatusDefaulted) {
		implied := domain.StatusForProgress(loan.PaidInstallments, loan.TenureMonths)
		if !implied.Equal(loan.Status) {
			return customError.WrapInvariantViolation(
				"loan %s is %s with %d of %d installments paid",
				loan.ID, loan.Status, loan.PaidInstallments, loan.TenureMonths)
		}
	}
	return nil
}
