package loans

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/mathutil"
)

// ErrUnknownMethod is returned for a repayment method other than avalanche or
// snowball.
var ErrUnknownMethod = errors.New("unknown repayment method")

// Category is optional loan metadata. The engine never interprets it.
type Category string

const (
	CategoryFederal  Category = "federal"
	CategoryPrivate  Category = "private"
	CategoryPersonal Category = "personal"
	CategoryOther    Category = "other"
)

// RepaymentMethod selects how extra money is prioritized across loans.
type RepaymentMethod string

const (
	// Avalanche targets the highest interest rate first.
	Avalanche RepaymentMethod = "avalanche"
	// Snowball targets the lowest balance first.
	Snowball RepaymentMethod = "snowball"
)

// ParseRepaymentMethod converts a user-supplied string into a RepaymentMethod.
func ParseRepaymentMethod(value string) (RepaymentMethod, error) {
	switch RepaymentMethod(strings.ToLower(strings.TrimSpace(value))) {
	case Avalanche:
		return Avalanche, nil
	case Snowball:
		return Snowball, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, value)
}

// Payment is one payment applied to a loan.
type Payment struct {
	ID        string    `json:"id" yaml:"id" msgpack:"id"`
	Date      time.Time `json:"date" yaml:"date" msgpack:"date"`
	Amount    float64   `json:"amount" yaml:"amount" msgpack:"amount"`
	Principal float64   `json:"principal" yaml:"principal" msgpack:"principal"`
	Interest  float64   `json:"interest" yaml:"interest" msgpack:"interest"`
}

// Loan holds the parameters and payment history of a single loan.
type Loan struct {
	ID             string    `json:"id" yaml:"id" msgpack:"id"`
	Name           string    `json:"name" yaml:"name" msgpack:"name"`
	Principal      float64   `json:"principal" yaml:"principal" msgpack:"principal"`
	InterestRate   float64   `json:"interestRate" yaml:"interestRate" msgpack:"interestRate"` // annual percentage
	LoanTerm       int       `json:"loanTerm" yaml:"loanTerm" msgpack:"loanTerm"`             // months
	StartDate      time.Time `json:"startDate" yaml:"startDate" msgpack:"startDate"`
	MinimumPayment float64   `json:"minimumPayment" yaml:"minimumPayment" msgpack:"minimumPayment"`
	PaymentsMade   []Payment `json:"paymentsMade" yaml:"paymentsMade" msgpack:"paymentsMade"`
	Category       Category  `json:"category,omitempty" yaml:"category,omitempty" msgpack:"category,omitempty"`
	DueDay         int       `json:"dueDay,omitempty" yaml:"dueDay,omitempty" msgpack:"dueDay,omitempty"`
	Notes          string    `json:"notes,omitempty" yaml:"notes,omitempty" msgpack:"notes,omitempty"`
}

// PaidPrincipal sums the principal portion of all recorded payments.
func (l Loan) PaidPrincipal() float64 {
	return mathutil.Sum(l.paymentField(func(p Payment) float64 { return p.Principal }))
}

// PaidInterest sums the interest portion of all recorded payments.
func (l Loan) PaidInterest() float64 {
	return mathutil.Sum(l.paymentField(func(p Payment) float64 { return p.Interest }))
}

// PaidAmount sums the cash amount of all recorded payments.
func (l Loan) PaidAmount() float64 {
	return mathutil.Sum(l.paymentField(func(p Payment) float64 { return p.Amount }))
}

// Balance is the principal not yet repaid.
func (l Loan) Balance() float64 {
	return l.Principal - l.PaidPrincipal()
}

// Clone returns a deep copy whose payment history does not alias l.
func (l Loan) Clone() Loan {
	c := l
	if l.PaymentsMade != nil {
		c.PaymentsMade = make([]Payment, len(l.PaymentsMade))
		copy(c.PaymentsMade, l.PaymentsMade)
	}
	return c
}

// WithPayment returns a copy of l with p appended to its history.
func (l Loan) WithPayment(p Payment) Loan {
	c := l.Clone()
	c.PaymentsMade = append(c.PaymentsMade, p)
	return c
}

func (l Loan) paymentField(field func(Payment) float64) []float64 {
	values := make([]float64, len(l.PaymentsMade))
	for i, p := range l.PaymentsMade {
		values[i] = field(p)
	}
	return values
}

// AmortizationData is one projected row of an amortization schedule.
type AmortizationData struct {
	Date             time.Time `json:"date"`
	Payment          float64   `json:"payment"`
	Principal        float64   `json:"principal"`
	Interest         float64   `json:"interest"`
	RemainingBalance float64   `json:"remainingBalance"`
}

// Schedule is a projected amortization schedule. Truncated is set when the
// row cap stopped generation before the balance reached zero.
type Schedule struct {
	Rows      []AmortizationData `json:"rows"`
	Truncated bool               `json:"truncated"`
}

// TotalPrincipal sums the principal of every row.
func (s Schedule) TotalPrincipal() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.Principal
	}
	return total
}

// TotalInterest sums the interest of every row.
func (s Schedule) TotalInterest() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.Interest
	}
	return total
}

// LoanSummary is a derived snapshot of a loan's totals and progress.
type LoanSummary struct {
	TotalPrincipal     float64   `json:"totalPrincipal"`
	TotalInterest      float64   `json:"totalInterest"`
	TotalPayments      float64   `json:"totalPayments"`
	PayoffDate         time.Time `json:"payoffDate"`
	MonthlyPayment     float64   `json:"monthlyPayment"`
	RemainingBalance   float64   `json:"remainingBalance"`
	ProgressPercentage float64   `json:"progressPercentage"`
	Truncated          bool      `json:"truncated"`
}

// RepaymentStrategy is the outcome of simulating a repayment method across a
// portfolio.
type RepaymentStrategy struct {
	Method            RepaymentMethod `json:"method"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	TotalInterestPaid float64         `json:"totalInterestPaid"`
	PayoffDate        time.Time       `json:"payoffDate"`
	LoanPayoffOrder   []string        `json:"loanPayoffOrder"`
	Months            int             `json:"months"`
	Truncated         bool            `json:"truncated"`
}
