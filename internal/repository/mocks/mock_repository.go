package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/emi-tracker/internal/domain"
)

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) LoadLoanRecords(ctx context.Context) ([]*domain.LoanRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRecord), args.Error(1)
}

func (m *MockRecordStore) SaveLoanRecords(ctx context.Context, loans []*domain.LoanRecord) error {
	args := m.Called(ctx, loans)
	return args.Error(0)
}

func (m *MockRecordStore) LoadPayments(ctx context.Context) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockRecordStore) SavePayments(ctx context.Context, payments []*domain.PaymentRecord) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *MockRecordStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockRecordStore creates a new mock record store instance
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{}
}
