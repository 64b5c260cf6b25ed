package domain

import (
	"github.com/shopspring/decimal"
)

// ScheduleEntry is one row of an amortization table. All amounts are whole
// currency units.
type ScheduleEntry struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"emi"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

// LoanSummary holds the headline figures for a set of loan terms.
type LoanSummary struct {
	MonthlyPayment     decimal.Decimal `json:"emi_amount"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	InterestPercentage decimal.Decimal `json:"interest_percentage"`
}

// LoanMetrics are the point-in-time figures derived from a single record.
type LoanMetrics struct {
	MonthsRemaining    int             `json:"months_remaining"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	TotalPayable       decimal.Decimal `json:"total_payable"`
	InterestPaidToDate decimal.Decimal `json:"interest_paid_to_date"`
	NextPaymentDate    Date            `json:"next_payment_date"`
	PayoffDate         Date            `json:"payoff_date"`
	DaysUntilPayment   int             `json:"days_until_payment"`
	ProgressPercent    decimal.Decimal `json:"progress_percent"`
}
