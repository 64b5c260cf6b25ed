package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	HealthExcellent      = "Excellent"
	HealthGood           = "Good"
	HealthNeedsAttention = "Needs Attention"
)

// LoanTypeBucket aggregates the loans of one type.
type LoanTypeBucket struct {
	Type           LoanType        `json:"type"`
	Count          int             `json:"count"`
	Principal      decimal.Decimal `json:"amount"`
	MonthlyPayment decimal.Decimal `json:"monthly_emi"`
}

// UpcomingPayment is the next due installment of an active loan.
// DaysUntilPayment is negative when the installment is overdue.
type UpcomingPayment struct {
	LoanID           uuid.UUID       `json:"loan_id"`
	LoanName         string          `json:"loan_name"`
	LoanType         LoanType        `json:"loan_type"`
	Lender           string          `json:"bank_name"`
	MonthlyPayment   decimal.Decimal `json:"emi_amount"`
	NextPaymentDate  Date            `json:"next_payment_date"`
	DaysUntilPayment int             `json:"days_until_payment"`
	IsOverdue        bool            `json:"is_overdue"`
}

// PortfolioSummary is the cross-loan reduction shown on the dashboard.
type PortfolioSummary struct {
	LoanCount               int               `json:"loan_count"`
	ActiveCount             int               `json:"active_count"`
	CompletedCount          int               `json:"completed_count"`
	DefaultedCount          int               `json:"defaulted_count"`
	TotalMonthlyObligation  decimal.Decimal   `json:"total_monthly_obligation"`
	TotalPrincipal          decimal.Decimal   `json:"total_principal"`
	TotalPaidAmount         decimal.Decimal   `json:"total_paid_amount"`
	TotalRemaining          decimal.Decimal   `json:"total_remaining"`
	TotalInterestPaidToDate decimal.Decimal   `json:"total_interest_paid_to_date"`
	AverageInterestRate     decimal.Decimal   `json:"average_interest_rate"`
	CompletionPercent       decimal.Decimal   `json:"completion_percent"`
	AverageMonthsRemaining  decimal.Decimal   `json:"average_months_remaining"`
	DebtFreeDate            *Date             `json:"debt_free_date,omitempty"`
	LoanTypeDistribution    []LoanTypeBucket  `json:"loan_type_distribution"`
	UpcomingPayments        []UpcomingPayment `json:"upcoming_payments"`
	OverdueCount            int               `json:"overdue_count"`
	PaymentHealthScore      float64           `json:"payment_health_score"`
	HealthLabel             string            `json:"health_label"`
}
