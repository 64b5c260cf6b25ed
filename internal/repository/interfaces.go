package repository

import (
	"context"

	"github.com/segyhp/emi-tracker/internal/domain"
)

// RecordStore holds the whole loan and payment collections. Reads and writes
// always cover the entire collection; the last writer wins.
type RecordStore interface {
	// LoadLoanRecords returns every loan, validated against the record invariants
	LoadLoanRecords(ctx context.Context) ([]*domain.LoanRecord, error)

	// SaveLoanRecords replaces the stored loan collection
	SaveLoanRecords(ctx context.Context, loans []*domain.LoanRecord) error

	// LoadPayments returns every payment record in insertion order
	LoadPayments(ctx context.Context) ([]*domain.PaymentRecord, error)

	// SavePayments replaces the stored payment collection
	SavePayments(ctx context.Context, payments []*domain.PaymentRecord) error

	// Ping checks the backing store is reachable
	Ping(ctx context.Context) error

	Close() error
}
