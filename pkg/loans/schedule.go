package loans

import (
	"fmt"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
	"go.uber.org/zap"
)

// AmortizationScheduleGenerator projects amortization schedules and summaries
// for individual loans.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
	clock  datetime.Clock
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger, clock datetime.Clock) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger, clock: datetime.ClockOrSystem(clock)}
}

// GenerateSchedule projects the remaining payments of a loan, paying the
// amortized monthly payment plus additionalPayment every month.
//
// The projection starts at the later of the loan's start date and the current
// time. An empty schedule is returned for a loan whose recorded principal
// payments already cover the principal. Generation stops after
// constants.MaxScheduleMonths rows; if the balance is still positive at that
// point the schedule is marked Truncated.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan Loan, additionalPayment float64) Schedule {
	monthlyRate := mathutil.MonthlyRate(loan.InterestRate)
	totalMonthlyPayment := CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.LoanTerm) + additionalPayment

	balance := loan.Balance()
	if balance <= 0 {
		return Schedule{Rows: []AmortizationData{}}
	}

	date := datetime.Later(loan.StartDate, g.clock.Now())
	rows := make([]AmortizationData, 0, scheduleCapacity(loan.LoanTerm))

	for balance > 0 && len(rows) < constants.MaxScheduleMonths {
		interest := balance * monthlyRate
		principal := mathutil.Min(totalMonthlyPayment-interest, balance)
		balance -= principal

		rows = append(rows, AmortizationData{
			Date:             date,
			Payment:          principal + interest,
			Principal:        principal,
			Interest:         interest,
			RemainingBalance: balance,
		})

		date = datetime.AddMonths(date, 1)
	}

	schedule := Schedule{Rows: rows}
	if balance > 0 {
		schedule.Truncated = true
		g.logger.Debug(fmt.Sprintf("schedule for loan %s did not converge within %d months, remaining balance %.2f",
			loan.Name, constants.MaxScheduleMonths, balance),
			zap.String("op", "loans.GenerateSchedule"),
		)
	}
	return schedule
}

func scheduleCapacity(termMonths int) int {
	if termMonths <= 0 {
		return 0
	}
	if termMonths > constants.MaxScheduleMonths {
		return constants.MaxScheduleMonths
	}
	return termMonths + 1
}

// Summarize combines a loan's payment history with its projected schedule.
//
// ProgressPercentage divides by the loan principal without guarding against
// zero. MonthlyPayment is the nominal minimum plus additionalPayment
// regardless of the size of the final installment.
func (g *AmortizationScheduleGenerator) Summarize(loan Loan, additionalPayment float64) LoanSummary {
	schedule := g.GenerateSchedule(loan, additionalPayment)
	paidPrincipal := loan.PaidPrincipal()
	paidInterest := loan.PaidInterest()

	totalInterest := paidInterest + schedule.TotalInterest()

	summary := LoanSummary{
		TotalPrincipal:     loan.Principal,
		TotalInterest:      totalInterest,
		TotalPayments:      loan.Principal + totalInterest,
		MonthlyPayment:     loan.MinimumPayment + additionalPayment,
		RemainingBalance:   loan.Principal - paidPrincipal,
		ProgressPercentage: paidPrincipal / loan.Principal * constants.PercentageMultiplier,
		Truncated:          schedule.Truncated,
	}

	switch {
	case len(schedule.Rows) > 0:
		summary.PayoffDate = schedule.Rows[len(schedule.Rows)-1].Date
	case len(loan.PaymentsMade) > 0:
		summary.PayoffDate = loan.PaymentsMade[len(loan.PaymentsMade)-1].Date
	default:
		summary.PayoffDate = g.clock.Now()
	}

	return summary
}
