package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/validation"
)

var (
	// ErrLoanNotFound is returned when no loan has the requested id.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrDuplicateLoan is returned when adding a loan whose id is taken.
	ErrDuplicateLoan = errors.New("duplicate loan id")

	// ErrInvalidPayment is returned for a non-positive payment amount.
	ErrInvalidPayment = errors.New("invalid payment")
)

// AddLoan validates loan and appends it to a copy of portfolio. A loan
// without an id gets a random one and a loan without a start date starts at
// now.
func AddLoan(portfolio []loans.Loan, loan loans.Loan, now time.Time) ([]loans.Loan, loans.Loan, error) {
	if err := validation.ValidateLoan(loan); err != nil {
		return portfolio, loans.Loan{}, err
	}

	added := loan.Clone()
	if added.ID == "" {
		added.ID = uuid.NewString()
	}
	if added.StartDate.IsZero() {
		added.StartDate = now
	}
	if added.PaymentsMade == nil {
		added.PaymentsMade = []loans.Payment{}
	}

	for _, existing := range portfolio {
		if existing.ID == added.ID {
			return portfolio, loans.Loan{}, fmt.Errorf("%w: %s", ErrDuplicateLoan, added.ID)
		}
	}

	updated := clonePortfolio(portfolio, 1)
	updated = append(updated, added)
	return updated, added, nil
}

// RemoveLoan returns a copy of portfolio without the loan with the given id.
func RemoveLoan(portfolio []loans.Loan, id string) ([]loans.Loan, error) {
	updated := make([]loans.Loan, 0, len(portfolio))
	found := false
	for _, loan := range portfolio {
		if loan.ID == id {
			found = true
			continue
		}
		updated = append(updated, loan.Clone())
	}
	if !found {
		return portfolio, fmt.Errorf("%w: %s", ErrLoanNotFound, id)
	}
	return updated, nil
}

// AddPayment records a cash payment against the loan with the given id,
// splitting it with loans.NewPayment.
func AddPayment(portfolio []loans.Loan, id string, amount float64, at time.Time) ([]loans.Loan, loans.Payment, error) {
	if !(amount > 0) {
		return portfolio, loans.Payment{}, fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidPayment, amount)
	}

	updated := clonePortfolio(portfolio, 0)
	for i, loan := range updated {
		if loan.ID != id {
			continue
		}
		payment := loans.NewPayment(loan, amount, at)
		updated[i] = loan.WithPayment(payment)
		return updated, payment, nil
	}
	return portfolio, loans.Payment{}, fmt.Errorf("%w: %s", ErrLoanNotFound, id)
}

func clonePortfolio(portfolio []loans.Loan, extra int) []loans.Loan {
	c := make([]loans.Loan, 0, len(portfolio)+extra)
	for _, loan := range portfolio {
		c = append(c, loan.Clone())
	}
	return c
}
