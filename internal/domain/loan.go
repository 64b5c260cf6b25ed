package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// LoanRecord is a tracked loan. MonthlyPayment is computed once at creation
// and must always equal what the engine computes from the loan terms.
type LoanRecord struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"loan_name"`
	Type              LoanType        `json:"loan_type"`
	Lender            string          `json:"bank_name"`
	AccountNumber     string          `json:"account_number,omitempty"`
	Principal         decimal.Decimal `json:"principal_amount"`
	AnnualRatePercent decimal.Decimal `json:"interest_rate"`
	TenureMonths      int             `json:"tenure_months"`
	StartDate         Date            `json:"start_date"`
	PaidInstallments  int             `json:"paid_installments"`
	MonthlyPayment    decimal.Decimal `json:"emi_amount"`
	Status            LoanStatus      `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Clone returns an independent copy of the record.
func (r *LoanRecord) Clone() *LoanRecord {
	c := *r
	return &c
}

// TotalPayable is fixed for the life of the loan; prepayment does not
// re-amortize.
func (r *LoanRecord) TotalPayable() decimal.Decimal {
	return r.MonthlyPayment.Mul(decimal.NewFromInt(int64(r.TenureMonths)))
}

// PaidAmount is the sum of settled installments.
func (r *LoanRecord) PaidAmount() decimal.Decimal {
	return r.MonthlyPayment.Mul(decimal.NewFromInt(int64(r.PaidInstallments)))
}

// MarkInstallmentPaid settles the next installment. Reaching the tenure moves
// the loan to Completed.
func (r *LoanRecord) MarkInstallmentPaid(now time.Time) error {
	if !r.Status.Equal(LoanStatusActive) {
		return customError.WrapLoanNotActive(r.ID.String(), r.Status.String())
	}
	if r.PaidInstallments >= r.TenureMonths {
		return customError.WrapInvariantViolation(
			"loan %s is active with %d of %d installments paid",
			r.ID, r.PaidInstallments, r.TenureMonths,
		)
	}

	r.PaidInstallments++
	r.Status = StatusForProgress(r.PaidInstallments, r.TenureMonths)
	r.UpdatedAt = now
	return nil
}

// MarkDefaulted applies the external default override. Active and Completed
// loans may be defaulted; Defaulted is terminal.
func (r *LoanRecord) MarkDefaulted(now time.Time) error {
	if r.Status.Equal(LoanStatusDefaulted) {
		return customError.WrapInvalidStatusTransition(r.Status.String(), LoanStatusDefaulted.String())
	}
	r.Status = LoanStatusDefaulted
	r.UpdatedAt = now
	return nil
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanName         string          `json:"loan_name" validate:"required,max=120"`
	LoanType         LoanType        `json:"loan_type" validate:"required,loan_type"`
	Principal        decimal.Decimal `json:"principal_amount" validate:"required,gt=0"`
	InterestRate     decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	TenureMonths     int             `json:"tenure_months" validate:"required,gt=0,lte=600"`
	StartDate        Date            `json:"start_date" validate:"required"`
	PaidInstallments int             `json:"paid_installments" validate:"gte=0,ltefield=TenureMonths"`
	BankName         string          `json:"bank_name" validate:"max=120"`
	AccountNumber    string          `json:"account_number,omitempty" validate:"max=34"`
}

type CalculateRequest struct {
	Principal    decimal.Decimal `json:"principal_amount" validate:"required,gt=0"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	TenureMonths int             `json:"tenure_months" validate:"required,gt=0,lte=600"`
}

type CalculateResponse struct {
	Summary  LoanSummary     `json:"summary"`
	Schedule []ScheduleEntry `json:"schedule"`
}

// LoanView is a record together with its engine-derived figures.
type LoanView struct {
	Loan    *LoanRecord `json:"loan"`
	Metrics LoanMetrics `json:"metrics"`
}

type MarkPaidResponse struct {
	Loan    *LoanRecord    `json:"loan"`
	Payment *PaymentRecord `json:"payment"`
}
