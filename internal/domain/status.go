package domain

import (
	"fmt"

	customError "github.com/segyhp/emi-tracker/pkg/errors"
)

// LoanStatus is the closed set of loan lifecycle states.
// The zero value is not a valid status.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive    = "Active"
	loanStatusCompleted = "Completed"
	loanStatusDefaulted = "Defaulted"
)

var (
	LoanStatusActive    = LoanStatus{value: loanStatusActive}
	LoanStatusCompleted = LoanStatus{value: loanStatusCompleted}
	LoanStatusDefaulted = LoanStatus{value: loanStatusDefaulted}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:    LoanStatusActive,
	loanStatusCompleted: LoanStatusCompleted,
	loanStatusDefaulted: LoanStatusDefaulted,
}

// ParseLoanStatus creates a LoanStatus from a raw string.
func ParseLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

func (s LoanStatus) String() string { return s.value }

func (s LoanStatus) IsZero() bool { return s.value == "" }

func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further installments can be recorded.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusCompleted || s.value == loanStatusDefaulted
}

func (s LoanStatus) MarshalText() ([]byte, error) {
	if s.IsZero() {
		return nil, fmt.Errorf("cannot marshal empty loan status")
	}
	return []byte(s.value), nil
}

func (s *LoanStatus) UnmarshalText(b []byte) error {
	v, err := ParseLoanStatus(string(b))
	if err != nil {
		return customError.WrapInvariantViolation("%v", err)
	}
	*s = v
	return nil
}

// StatusForProgress is the status implied by the paid count for a loan that
// has not been defaulted.
func StatusForProgress(paidInstallments, tenureMonths int) LoanStatus {
	if paidInstallments >= tenureMonths {
		return LoanStatusCompleted
	}
	return LoanStatusActive
}

// LoanType groups loans for distribution reporting.
type LoanType string

const (
	LoanTypeHome      LoanType = "Home Loan"
	LoanTypeCar       LoanType = "Car Loan"
	LoanTypePersonal  LoanType = "Personal Loan"
	LoanTypeEducation LoanType = "Education Loan"
	LoanTypeBusiness  LoanType = "Business Loan"
	LoanTypeOther     LoanType = "Other"
)

// LoanTypes lists every accepted loan type.
var LoanTypes = []LoanType{
	LoanTypeHome,
	LoanTypeCar,
	LoanTypePersonal,
	LoanTypeEducation,
	LoanTypeBusiness,
	LoanTypeOther,
}

// IsValid reports whether t is one of LoanTypes.
func (t LoanType) IsValid() bool {
	for _, known := range LoanTypes {
		if t == known {
			return true
		}
	}
	return false
}
