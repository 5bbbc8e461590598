package portfolio

import (
	"sort"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
)

// PaymentReminder is the next due payment of a loan.
type PaymentReminder struct {
	LoanID   string    `json:"loanId"`
	LoanName string    `json:"loanName"`
	DueDate  time.Time `json:"dueDate"`
	Amount   float64   `json:"amount"`
	IsPaid   bool      `json:"isPaid"`
}

// Reminders lists the next due date on or after now for every loan with a
// due day and an outstanding balance, ordered by due date. A reminder is paid
// when any payment was recorded in its due month.
func Reminders(portfolio []loans.Loan, now time.Time) []PaymentReminder {
	reminders := make([]PaymentReminder, 0, len(portfolio))
	for _, loan := range portfolio {
		if loan.DueDay <= 0 || !mathutil.IsPositive(loan.Balance()) {
			continue
		}

		due := datetime.NextDueDate(now, loan.DueDay)
		reminder := PaymentReminder{
			LoanID:   loan.ID,
			LoanName: loan.Name,
			DueDate:  due,
			Amount:   loan.MinimumPayment,
		}
		for _, p := range loan.PaymentsMade {
			if datetime.SameMonth(p.Date, due) {
				reminder.IsPaid = true
				break
			}
		}
		reminders = append(reminders, reminder)
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DueDate.Before(reminders[j].DueDate)
	})
	return reminders
}

// DueWithin filters reminders to the unpaid ones due within days of now.
func DueWithin(reminders []PaymentReminder, now time.Time, days int) []PaymentReminder {
	cutoff := now.AddDate(0, 0, days)
	var due []PaymentReminder
	for _, r := range reminders {
		if !r.IsPaid && !r.DueDate.After(cutoff) {
			due = append(due, r)
		}
	}
	return due
}
