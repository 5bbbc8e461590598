package portfolio

import (
	"testing"

	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminders(t *testing.T) {
	now := day("2025-03-20")

	withDue := func(id string, dueDay int) loans.Loan {
		l := testLoan(id, 5, 1000, 50, 24, "2024-01-01")
		l.DueDay = dueDay
		return l
	}

	paidOff := withDue("PaidOff", 25).WithPayment(loans.Payment{ID: "x", Date: day("2025-01-25"), Amount: 1000, Principal: 1000})
	paidThisCycle := withDue("Paid", 28).WithPayment(loans.Payment{ID: "y", Date: day("2025-03-02"), Amount: 50, Principal: 46, Interest: 4})

	portfolio := []loans.Loan{
		withDue("Later", 5),
		withDue("NoDueDay", 0),
		paidOff,
		paidThisCycle,
		withDue("Soon", 22),
		withDue("Today", 20),
	}

	reminders := Reminders(portfolio, now)
	require.Len(t, reminders, 4)

	assert.Equal(t, "Today", reminders[0].LoanID)
	assert.True(t, reminders[0].DueDate.Equal(day("2025-03-20")))
	assert.Equal(t, "Soon", reminders[1].LoanID)
	assert.True(t, reminders[1].DueDate.Equal(day("2025-03-22")))
	assert.Equal(t, "Paid", reminders[2].LoanID)
	assert.True(t, reminders[2].IsPaid)
	assert.Equal(t, "Later", reminders[3].LoanID)
	assert.True(t, reminders[3].DueDate.Equal(day("2025-04-05")))
	assert.False(t, reminders[3].IsPaid)
	assert.Equal(t, 50.0, reminders[3].Amount)

	due := DueWithin(reminders, now, 7)
	require.Len(t, due, 2)
	assert.Equal(t, "Today", due[0].LoanID)
	assert.Equal(t, "Soon", due[1].LoanID)
}

func TestRemindersClampShortMonth(t *testing.T) {
	l := testLoan("Feb", 5, 1000, 50, 24, "2024-01-01")
	l.DueDay = 31

	reminders := Reminders([]loans.Loan{l}, day("2025-02-10"))
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].DueDate.Equal(day("2025-02-28")))
}

func TestRemindersSkipFractionalBalance(t *testing.T) {
	l := testLoan("Dust", 5, 1000, 50, 24, "2024-01-01").
		WithPayment(loans.Payment{ID: "z", Date: day("2025-01-05"), Amount: 999.995, Principal: 999.995})
	l.DueDay = 5

	assert.Empty(t, Reminders([]loans.Loan{l}, day("2025-02-01")))
}

func TestRemindersEmpty(t *testing.T) {
	assert.Empty(t, Reminders(nil, day("2025-01-01")))
	assert.Empty(t, DueWithin(nil, day("2025-01-01"), 30))
}
