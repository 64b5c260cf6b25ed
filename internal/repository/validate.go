package repository

import (
	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/engine"
)

// validateLoans rejects the whole load if any stored record breaks an
// invariant; nothing downstream is allowed to see a corrupt record.
func validateLoans(loans []*domain.LoanRecord) error {
	for _, loan := range loans {
		if err := engine.CheckInvariants(loan); err != nil {
			return err
		}
	}
	return nil
}

func cloneLoans(loans []*domain.LoanRecord) []*domain.LoanRecord {
	out := make([]*domain.LoanRecord, 0, len(loans))
	for _, loan := range loans {
		out = append(out, loan.Clone())
	}
	return out
}

func clonePayments(payments []*domain.PaymentRecord) []*domain.PaymentRecord {
	out := make([]*domain.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.Clone())
	}
	return out
}
