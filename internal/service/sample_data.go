package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/emi-tracker/internal/domain"
)

// sampleLoans are demo loans for an empty tracker. Monthly payments are left
// to the engine so the stored records satisfy the record invariants.
func sampleLoans() []*domain.CreateLoanRequest {
	return []*domain.CreateLoanRequest{
		{
			LoanName:         "Dream Home Loan",
			LoanType:         domain.LoanTypeHome,
			Principal:        decimal.NewFromInt(2500000),
			InterestRate:     decimal.RequireFromString("8.5"),
			TenureMonths:     240,
			StartDate:        domain.NewDate(2023, time.January, 1),
			PaidInstallments: 12,
			BankName:         "HDFC Bank",
			AccountNumber:    "XXXX1234",
		},
		{
			LoanName:         "Car Loan - Honda City",
			LoanType:         domain.LoanTypeCar,
			Principal:        decimal.NewFromInt(800000),
			InterestRate:     decimal.RequireFromString("10.5"),
			TenureMonths:     60,
			StartDate:        domain.NewDate(2023, time.June, 1),
			PaidInstallments: 6,
			BankName:         "ICICI Bank",
			AccountNumber:    "XXXX5678",
		},
		{
			LoanName:         "Business Expansion",
			LoanType:         domain.LoanTypeBusiness,
			Principal:        decimal.NewFromInt(500000),
			InterestRate:     decimal.NewFromInt(12),
			TenureMonths:     36,
			StartDate:        domain.NewDate(2023, time.March, 1),
			PaidInstallments: 9,
			BankName:         "Axis Bank",
			AccountNumber:    "XXXX9012",
		},
	}
}
