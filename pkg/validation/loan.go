package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/format"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
)

// ErrInvalidLoan is wrapped by every error ValidateLoan returns.
var ErrInvalidLoan = errors.New("invalid loan")

// ValidateLoan checks the fields a user must supply when adding a loan.
// Decoded portfolios are not passed through here.
func ValidateLoan(loan loans.Loan) error {
	var problems []string

	if strings.TrimSpace(loan.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !(loan.Principal > 0) || math.IsInf(loan.Principal, 0) {
		problems = append(problems, fmt.Sprintf("principal must be positive, got %v", loan.Principal))
	}
	if !(loan.InterestRate >= 0) || math.IsInf(loan.InterestRate, 0) {
		problems = append(problems, fmt.Sprintf("interest rate must not be negative, got %v", loan.InterestRate))
	}
	if loan.LoanTerm <= 0 {
		problems = append(problems, fmt.Sprintf("loan term must be a positive number of months, got %d", loan.LoanTerm))
	}
	if !(loan.MinimumPayment > 0) || math.IsInf(loan.MinimumPayment, 0) {
		problems = append(problems, fmt.Sprintf("minimum payment must be positive, got %v", loan.MinimumPayment))
	}
	if loan.DueDay < 0 || loan.DueDay > 31 {
		problems = append(problems, fmt.Sprintf("due day must be between 1 and 31, got %d", loan.DueDay))
	}
	if loan.Category != "" && !knownCategory(loan.Category) {
		problems = append(problems, fmt.Sprintf("unknown category %q", loan.Category))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidLoan, loan.Name, strings.Join(problems, "; "))
	}
	return nil
}

func knownCategory(c loans.Category) bool {
	switch c {
	case loans.CategoryFederal, loans.CategoryPrivate, loans.CategoryPersonal, loans.CategoryOther:
		return true
	}
	return false
}

// LoanWarnings reports loan parameters that are valid but unlikely to be
// intended: a minimum payment that never amortizes the balance, or one below
// the amortized payment for the configured term. A repaid loan has none.
func LoanWarnings(loan loans.Loan) []string {
	if mathutil.IsZero(loan.Balance()) {
		return nil
	}

	var warnings []string
	firstInterest := loans.CalculateInterestPayment(loan.Balance(), loan.InterestRate)
	if loan.MinimumPayment <= firstInterest {
		warnings = append(warnings, fmt.Sprintf("Loan '%s' minimum payment %s does not cover monthly interest %s - balance will never decrease",
			loan.Name, format.Currency(loan.MinimumPayment), format.Currency(firstInterest)))
		return warnings
	}

	if loan.LoanTerm > 0 {
		amortized := loans.CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.LoanTerm)
		if loan.MinimumPayment < amortized && !mathutil.WithinTolerance(loan.MinimumPayment, amortized, constants.CurrencyTolerance) {
			warnings = append(warnings, fmt.Sprintf("Loan '%s' minimum payment %s is below the amortized payment %s for %d months",
				loan.Name, format.Currency(loan.MinimumPayment), format.Currency(amortized), loan.LoanTerm))
		}
	}

	return warnings
}
