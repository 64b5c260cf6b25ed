package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord is appended each time an installment is settled. The split
// comes from the schedule row for that month.
type PaymentRecord struct {
	ID               uuid.UUID       `json:"id"`
	LoanID           uuid.UUID       `json:"loan_id"`
	Installment      int             `json:"installment"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      Date            `json:"payment_date"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	InterestAmount   decimal.Decimal `json:"interest_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Clone returns an independent copy of the payment.
func (p *PaymentRecord) Clone() *PaymentRecord {
	c := *p
	return &c
}
