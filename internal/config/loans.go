package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
)

// Loan is a loan as written in the config file. Dates accept 2006-01-02,
// 2006-01 or RFC 3339.
type Loan struct {
	ID             string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name           string    `json:"name" yaml:"name"`
	Principal      float64   `json:"principal" yaml:"principal"`
	InterestRate   float64   `json:"interestRate" yaml:"interestRate"`
	LoanTerm       int       `json:"loanTerm" yaml:"loanTerm"` // months
	StartDate      string    `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	MinimumPayment float64   `json:"minimumPayment,omitempty" yaml:"minimumPayment,omitempty"`
	Category       string    `json:"category,omitempty" yaml:"category,omitempty"`
	DueDay         int       `json:"dueDay,omitempty" yaml:"dueDay,omitempty"`
	Notes          string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Payments       []Payment `json:"payments,omitempty" yaml:"payments,omitempty"`
}

// Payment is a recorded payment in the config file. When Principal and
// Interest are both zero the amount is split against the balance at the time
// of the payment.
type Payment struct {
	ID        string  `json:"id,omitempty" yaml:"id,omitempty"`
	Date      string  `json:"date" yaml:"date"`
	Amount    float64 `json:"amount" yaml:"amount"`
	Principal float64 `json:"principal,omitempty" yaml:"principal,omitempty"`
	Interest  float64 `json:"interest,omitempty" yaml:"interest,omitempty"`
}

// ToLoan converts the entry into an engine loan. A missing start date is the
// current time of clock, a missing minimum payment is the amortized payment
// and a missing id is generated.
func (l Loan) ToLoan(clock datetime.Clock) (loans.Loan, error) {
	clock = datetime.ClockOrSystem(clock)

	loan := loans.Loan{
		ID:             l.ID,
		Name:           l.Name,
		Principal:      l.Principal,
		InterestRate:   l.InterestRate,
		LoanTerm:       l.LoanTerm,
		MinimumPayment: l.MinimumPayment,
		Category:       loans.Category(l.Category),
		DueDay:         l.DueDay,
		Notes:          l.Notes,
		PaymentsMade:   make([]loans.Payment, 0, len(l.Payments)),
	}
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}

	if l.StartDate == "" {
		loan.StartDate = clock.Now()
	} else {
		start, err := datetime.ParseDate(l.StartDate)
		if err != nil {
			return loans.Loan{}, fmt.Errorf("loan '%s' start date: %w", l.Name, err)
		}
		loan.StartDate = start
	}

	if loan.MinimumPayment == 0 && loan.LoanTerm > 0 {
		loan.MinimumPayment = loans.CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.LoanTerm)
	}

	for i, p := range l.Payments {
		date, err := datetime.ParseDate(p.Date)
		if err != nil {
			return loans.Loan{}, fmt.Errorf("loan '%s' payment %d date: %w", l.Name, i+1, err)
		}

		payment := loans.Payment{
			ID:        p.ID,
			Date:      date,
			Amount:    p.Amount,
			Principal: p.Principal,
			Interest:  p.Interest,
		}
		if p.Principal == 0 && p.Interest == 0 {
			payment = loans.NewPayment(loan, p.Amount, date)
			if p.ID != "" {
				payment.ID = p.ID
			}
		} else if payment.ID == "" {
			payment.ID = uuid.NewString()
		}
		loan = loan.WithPayment(payment)
	}

	return loan, nil
}

// Portfolio converts every configured loan.
func (c *Configuration) Portfolio(clock datetime.Clock) ([]loans.Loan, error) {
	portfolio := make([]loans.Loan, 0, len(c.Loans))
	for _, entry := range c.Loans {
		loan, err := entry.ToLoan(clock)
		if err != nil {
			return nil, err
		}
		portfolio = append(portfolio, loan)
	}
	return portfolio, nil
}
