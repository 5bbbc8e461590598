// Package loans provides the loan-math engine: payment calculation,
// amortization schedules, loan summaries and repayment strategy simulation.
//
// Every operation treats its Loan inputs as read-only and returns new values.
// The current time is read only through an injected datetime.Clock.
package loans

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
)

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
// termMonths must be positive; it is not validated.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	monthlyRate := mathutil.MonthlyRate(annualInterestRate)
	if monthlyRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	power := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * power / (power - 1)
}

// CalculateInterestPayment calculates the interest accrued on a balance over one month.
func CalculateInterestPayment(balance, annualInterestRate float64) float64 {
	return balance * mathutil.MonthlyRate(annualInterestRate)
}

// NewPayment splits a cash payment made on a loan into its interest and
// principal portions. Interest accrues on the current balance for one month;
// the principal portion never exceeds the balance and any overshoot is booked
// as interest so that Amount == Principal + Interest.
func NewPayment(loan Loan, amount float64, at time.Time) Payment {
	balance := loan.Balance()
	interest := CalculateInterestPayment(balance, loan.InterestRate)
	principal := mathutil.Min(amount-interest, balance)

	return Payment{
		ID:        uuid.NewString(),
		Date:      at,
		Amount:    amount,
		Principal: principal,
		Interest:  amount - principal,
	}
}
