package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

const (
	loansKeySuffix    = ":loans"
	paymentsKeySuffix = ":payments"
)

// redisStore keeps each collection as a single JSON blob.
type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) RecordStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *redisStore) loansKey() string    { return s.prefix + loansKeySuffix }
func (s *redisStore) paymentsKey() string { return s.prefix + paymentsKeySuffix }

func (s *redisStore) LoadLoanRecords(ctx context.Context) ([]*domain.LoanRecord, error) {
	data, err := s.get(ctx, s.loansKey())
	if err != nil {
		return nil, customError.WrapStoreError("load loans", err)
	}
	return decodeLoans(data)
}

func (s *redisStore) SaveLoanRecords(ctx context.Context, loans []*domain.LoanRecord) error {
	data, err := json.Marshal(nonNilLoans(loans))
	if err != nil {
		return customError.WrapStoreError("save loans", err)
	}
	if err := s.client.Set(ctx, s.loansKey(), data, 0).Err(); err != nil {
		return customError.WrapStoreError("save loans", err)
	}
	return nil
}

func (s *redisStore) LoadPayments(ctx context.Context) ([]*domain.PaymentRecord, error) {
	data, err := s.get(ctx, s.paymentsKey())
	if err != nil {
		return nil, customError.WrapStoreError("load payments", err)
	}
	return decodePayments(data)
}

func (s *redisStore) SavePayments(ctx context.Context, payments []*domain.PaymentRecord) error {
	if payments == nil {
		payments = []*domain.PaymentRecord{}
	}
	data, err := json.Marshal(payments)
	if err != nil {
		return customError.WrapStoreError("save payments", err)
	}
	if err := s.client.Set(ctx, s.paymentsKey(), data, 0).Err(); err != nil {
		return customError.WrapStoreError("save payments", err)
	}
	return nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// get treats a missing key as an empty collection.
func (s *redisStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func nonNilLoans(loans []*domain.LoanRecord) []*domain.LoanRecord {
	if loans == nil {
		return []*domain.LoanRecord{}
	}
	return loans
}

func decodeLoans(data []byte) ([]*domain.LoanRecord, error) {
	loans := []*domain.LoanRecord{}
	if len(data) == 0 {
		return loans, nil
	}
	if err := json.Unmarshal(data, &loans); err != nil {
		if errors.Is(err, customError.ErrInvariantViolation) {
			return nil, err
		}
		return nil, customError.WrapInvariantViolation("stored loan blob is not valid JSON: %v", err)
	}
	for _, loan := range loans {
		if loan == nil {
			return nil, customError.WrapInvariantViolation("stored loan blob contains a null record")
		}
		if !loan.Type.IsValid() {
			return nil, customError.WrapInvariantViolation("stored loan %s has unknown type %q", loan.ID, loan.Type)
		}
	}
	if err := validateLoans(loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func decodePayments(data []byte) ([]*domain.PaymentRecord, error) {
	payments := []*domain.PaymentRecord{}
	if len(data) == 0 {
		return payments, nil
	}
	if err := json.Unmarshal(data, &payments); err != nil {
		return nil, customError.WrapInvariantViolation("stored payment blob is not valid JSON: %v", err)
	}
	for _, p := range payments {
		if p == nil {
			return nil, customError.WrapInvariantViolation("stored payment blob contains a null record")
		}
	}
	return payments, nil
}
