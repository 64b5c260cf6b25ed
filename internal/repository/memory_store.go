package repository

import (
	"context"
	"sync"

	"github.com/segyhp/emi-tracker/internal/domain"
)

type memoryStore struct {
	mu       sync.RWMutex
	loans    []*domain.LoanRecord
	payments []*domain.PaymentRecord
}

// NewMemoryStore returns a process-local store. Records are copied on the
// way in and out so callers never share state with the store.
func NewMemoryStore() RecordStore {
	return &memoryStore{}
}

func (s *memoryStore) LoadLoanRecords(ctx context.Context) ([]*domain.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans := cloneLoans(s.loans)
	if err := validateLoans(loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *memoryStore) SaveLoanRecords(ctx context.Context, loans []*domain.LoanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loans = cloneLoans(loans)
	return nil
}

func (s *memoryStore) LoadPayments(ctx context.Context) ([]*domain.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clonePayments(s.payments), nil
}

func (s *memoryStore) SavePayments(ctx context.Context, payments []*domain.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = clonePayments(payments)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *memoryStore) Close() error {
	return nil
}
