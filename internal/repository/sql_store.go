package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// Decimal columns are TEXT so no precision is lost on either driver.
const schema = `
	CREATE TABLE IF NOT EXISTS loan_records (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		loan_name TEXT NOT NULL,
		loan_type TEXT NOT NULL,
		bank_name TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		principal_amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		tenure_months INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		paid_installments INTEGER NOT NULL,
		emi_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS payment_records (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		loan_id TEXT NOT NULL,
		installment INTEGER NOT NULL,
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		principal_amount TEXT NOT NULL,
		interest_amount TEXT NOT NULL,
		remaining_balance TEXT NOT NULL
	);
`

type loanRow struct {
	ID               string          `db:"id"`
	Position         int             `db:"position"`
	Name             string          `db:"loan_name"`
	Type             string          `db:"loan_type"`
	Lender           string          `db:"bank_name"`
	AccountNumber    string          `db:"account_number"`
	Principal        decimal.Decimal `db:"principal_amount"`
	InterestRate     decimal.Decimal `db:"interest_rate"`
	TenureMonths     int             `db:"tenure_months"`
	StartDate        string          `db:"start_date"`
	PaidInstallments int             `db:"paid_installments"`
	MonthlyPayment   decimal.Decimal `db:"emi_amount"`
	Status           string          `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type paymentRow struct {
	ID               string          `db:"id"`
	Position         int             `db:"position"`
	LoanID           string          `db:"loan_id"`
	Installment      int             `db:"installment"`
	Amount           decimal.Decimal `db:"amount"`
	PaymentDate      string          `db:"payment_date"`
	PrincipalAmount  decimal.Decimal `db:"principal_amount"`
	InterestAmount   decimal.Decimal `db:"interest_amount"`
	RemainingBalance decimal.Decimal `db:"remaining_balance"`
}

type sqlStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps a postgres or sqlite3 handle and creates the tables if
// they do not exist.
func NewSQLStore(ctx context.Context, db *sqlx.DB) (RecordStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, customError.WrapStoreError("migrate", err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) LoadLoanRecords(ctx context.Context) ([]*domain.LoanRecord, error) {
	query := `
		SELECT id, position, loan_name, loan_type, bank_name, account_number, principal_amount,
		       interest_rate, tenure_months, start_date, paid_installments, emi_amount, status,
		       created_at, updated_at
		FROM loan_records
		ORDER BY position
	`

	var rows []loanRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, customError.WrapStoreError("load loans", err)
	}

	loans := make([]*domain.LoanRecord, 0, len(rows))
	for _, row := range rows {
		loan, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	if err := validateLoans(loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *sqlStore) SaveLoanRecords(ctx context.Context, loans []*domain.LoanRecord) error {
	query := `
		INSERT INTO loan_records (id, position, loan_name, loan_type, bank_name, account_number,
			principal_amount, interest_rate, tenure_months, start_date, paid_installments, emi_amount,
			status, created_at, updated_at)
		VALUES (:id, :position, :loan_name, :loan_type, :bank_name, :account_number,
			:principal_amount, :interest_rate, :tenure_months, :start_date, :paid_installments, :emi_amount,
			:status, :created_at, :updated_at)
	`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapStoreError("save loans", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM loan_records`); err != nil {
		return customError.WrapStoreError("save loans", err)
	}

	for i, loan := range loans {
		if _, err = tx.NamedExecContext(ctx, query, loanRowFrom(i, loan)); err != nil {
			return customError.WrapStoreError("save loans", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return customError.WrapStoreError("save loans", err)
	}
	return nil
}

func (s *sqlStore) LoadPayments(ctx context.Context) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT id, position, loan_id, installment, amount, payment_date, principal_amount,
		       interest_amount, remaining_balance
		FROM payment_records
		ORDER BY position
	`

	var rows []paymentRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, customError.WrapStoreError("load payments", err)
	}

	payments := make([]*domain.PaymentRecord, 0, len(rows))
	for _, row := range rows {
		payment, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (s *sqlStore) SavePayments(ctx context.Context, payments []*domain.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (id, position, loan_id, installment, amount, payment_date,
			principal_amount, interest_amount, remaining_balance)
		VALUES (:id, :position, :loan_id, :installment, :amount, :payment_date,
			:principal_amount, :interest_amount, :remaining_balance)
	`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapStoreError("save payments", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM payment_records`); err != nil {
		return customError.WrapStoreError("save payments", err)
	}

	for i, payment := range payments {
		if _, err = tx.NamedExecContext(ctx, query, paymentRowFrom(i, payment)); err != nil {
			return customError.WrapStoreError("save payments", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return customError.WrapStoreError("save payments", err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func loanRowFrom(position int, loan *domain.LoanRecord) loanRow {
	return loanRow{
		ID:               loan.ID.String(),
		Position:         position,
		Name:             loan.Name,
		Type:             string(loan.Type),
		Lender:           loan.Lender,
		AccountNumber:    loan.AccountNumber,
		Principal:        loan.Principal,
		InterestRate:     loan.AnnualRatePercent,
		TenureMonths:     loan.TenureMonths,
		StartDate:        loan.StartDate.String(),
		PaidInstallments: loan.PaidInstallments,
		MonthlyPayment:   loan.MonthlyPayment,
		Status:           loan.Status.String(),
		CreatedAt:        loan.CreatedAt.UTC(),
		UpdatedAt:        loan.UpdatedAt.UTC(),
	}
}

func (r loanRow) toDomain() (*domain.LoanRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored loan id %q: %v", r.ID, err)
	}
	status, err := domain.ParseLoanStatus(r.Status)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored loan %s: %v", r.ID, err)
	}
	start, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored loan %s start date: %v", r.ID, err)
	}
	loanType := domain.LoanType(r.Type)
	if !loanType.IsValid() {
		return nil, customError.WrapInvariantViolation("stored loan %s has unknown type %q", r.ID, r.Type)
	}

	return &domain.LoanRecord{
		ID:                id,
		Name:              r.Name,
		Type:              loanType,
		Lender:            r.Lender,
		AccountNumber:     r.AccountNumber,
		Principal:         r.Principal,
		AnnualRatePercent: r.InterestRate,
		TenureMonths:      r.TenureMonths,
		StartDate:         start,
		PaidInstallments:  r.PaidInstallments,
		MonthlyPayment:    r.MonthlyPayment,
		Status:            status,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}, nil
}

func paymentRowFrom(position int, p *domain.PaymentRecord) paymentRow {
	return paymentRow{
		ID:               p.ID.String(),
		Position:         position,
		LoanID:           p.LoanID.String(),
		Installment:      p.Installment,
		Amount:           p.Amount,
		PaymentDate:      p.PaymentDate.String(),
		PrincipalAmount:  p.PrincipalAmount,
		InterestAmount:   p.InterestAmount,
		RemainingBalance: p.RemainingBalance,
	}
}

func (r paymentRow) toDomain() (*domain.PaymentRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored payment id %q: %v", r.ID, err)
	}
	loanID, err := uuid.Parse(r.LoanID)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored payment %s loan id: %v", r.ID, err)
	}
	paidOn, err := domain.ParseDate(r.PaymentDate)
	if err != nil {
		return nil, customError.WrapInvariantViolation("stored payment %s date: %v", r.ID, err)
	}

	return &domain.PaymentRecord{
		ID:               id,
		LoanID:           loanID,
		Installment:      r.Installment,
		Amount:           r.Amount,
		PaymentDate:      paidOn,
		PrincipalAmount:  r.PrincipalAmount,
		InterestAmount:   r.InterestAmount,
		RemainingBalance: r.RemainingBalance,
	}, nil
}
