// Package engine holds the amortization math: monthly payment, schedule and
// the per-loan figures derived from a record. Every function is pure.
package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

// annual percent -> monthly fraction
const ratePercentPerMonth = 1200.0

func validateTerms(principal, annualRatePercent decimal.Decimal, tenureMonths int) error {
	if !principal.IsPositive() {
		return customError.WrapInvalidInput("principal must be positive, got %s", principal)
	}
	if tenureMonths <= 0 {
		return customError.WrapInvalidInput("tenure must be at least one month, got %d", tenureMonths)
	}
	if annualRatePercent.IsNegative() {
		return customError.WrapInvalidInput("interest rate must not be negative, got %s", annualRatePercent)
	}
	return nil
}

// ComputeMonthlyPayment returns the fixed installment, rounded half away from
// zero to a whole currency unit.
//
//	r       = annualRatePercent / 1200
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// At r == 0 the formula is undefined and the principal is split evenly.
func ComputeMonthlyPayment(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if err := validateTerms(principal, annualRatePercent, tenureMonths); err != nil {
		return decimal.Zero, err
	}

	var payment decimal.Decimal
	r := annualRatePercent.InexactFloat64() / ratePercentPerMonth
	factor := math.Pow(1+r, float64(tenureMonths))

	if annualRatePercent.IsZero() || factor == 1 {
		payment = utils.RoundToUnit(principal.Div(decimal.NewFromInt(int64(tenureMonths))))
	} else {
		raw := principal.InexactFloat64() * r * factor / (factor - 1)
		if math.IsInf(raw, 0) || math.IsNaN(raw) {
			return decimal.Zero, customError.WrapInvalidInput(
				"loan terms overflow: principal %s, rate %s, tenure %d", principal, annualRatePercent, tenureMonths)
		}
		payment = decimal.NewFromFloat(math.Round(raw))
	}

	if !payment.IsPositive() {
		return decimal.Zero, customError.WrapInvalidInput(
			"principal %s is too small to spread over %d whole-unit installments", principal, tenureMonths)
	}
	// The balance must shrink from month 1 onwards.
	if r > 0 && payment.InexactFloat64() <= principal.InexactFloat64()*r {
		return decimal.Zero, customError.WrapInvalidInput(
			"installment %s does not cover the first month's interest on principal %s at %s%%",
			payment, principal, annualRatePercent)
	}
	return payment, nil
}

// BuildAmortizationSchedule returns exactly tenureMonths rows, month 1 first.
// Interest and principal are rounded per row, so their column sums may drift
// from the principal by a few units; the final balance is always zero.
func BuildAmortizationSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int) ([]domain.ScheduleEntry, error) {
	payment, err := ComputeMonthlyPayment(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}
	return walkSchedule(principal, annualRatePercent, payment, tenureMonths, tenureMonths), nil
}

// walkSchedule produces the first `months` rows of the schedule for the given
// payment. The running balance is carried unrounded between months; only the
// reported figures are rounded.
func walkSchedule(principal, annualRatePercent, payment decimal.Decimal, tenureMonths, months int) []domain.ScheduleEntry {
	r := annualRatePercent.InexactFloat64() / ratePercentPerMonth
	emi := payment.InexactFloat64()
	balance := principal.InexactFloat64()

	entries := make([]domain.ScheduleEntry, 0, months)
	for month := 1; month <= months; month++ {
		interest := balance * r
		principalPart := emi - interest
		balance -= principalPart

		closing := decimal.Max(decimal.Zero, roundUnit(balance))
		if month == tenureMonths {
			closing = decimal.Zero
		}

		entries = append(entries, domain.ScheduleEntry{
			Month:     month,
			Payment:   payment,
			Principal: roundUnit(principalPart),
			Interest:  roundUnit(interest),
			Balance:   closing,
		})
	}
	return entries
}

func roundUnit(v float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Round(v))
}

// ComputeLoanSummary derives the totals from the rounded monthly payment, not
// from the schedule rows.
func ComputeLoanSummary(principal, annualRatePercent decimal.Decimal, tenureMonths int) (domain.LoanSummary, error) {
	payment, err := ComputeMonthlyPayment(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return domain.LoanSummary{}, err
	}

	totalPayable := payment.Mul(decimal.NewFromInt(int64(tenureMonths)))
	totalInterest := decimal.Max(decimal.Zero, totalPayable.Sub(principal))

	return domain.LoanSummary{
		MonthlyPayment:     payment,
		TotalPayable:       totalPayable,
		TotalInterest:      totalInterest,
		InterestPercentage: utils.Percent(totalInterest, totalPayable),
	}, nil
}
