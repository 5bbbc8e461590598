package loans

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
	"go.uber.org/zap"
)

// StrategySimulator simulates paying down a whole portfolio under a
// repayment method with a shared extra-payment budget.
//
// Extra payments are recorded as 100% principal with no interest, even though
// they are applied mid-month. Minimum payments of retired loans roll into the
// extra budget under both methods.
type StrategySimulator struct {
	logger *zap.Logger
	clock  datetime.Clock
}

// NewStrategySimulator creates a new simulator instance
func NewStrategySimulator(logger *zap.Logger, clock datetime.Clock) *StrategySimulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategySimulator{logger: logger, clock: datetime.ClockOrSystem(clock)}
}

type simulatedLoan struct {
	loan    Loan
	balance float64
}

func (s *simulatedLoan) pay(date time.Time, amount, principal, interest float64) {
	s.loan.PaymentsMade = append(s.loan.PaymentsMade, Payment{
		ID:        fmt.Sprintf("%s-sim-%d", s.loan.ID, len(s.loan.PaymentsMade)+1),
		Date:      date,
		Amount:    amount,
		Principal: principal,
		Interest:  interest,
	})
	s.balance -= principal
}

// Simulate runs the repayment simulation on copies of loans; the caller's
// loans are never modified.
//
// Loans are prioritized once, up front: avalanche by descending interest rate,
// snowball by ascending balance. Each simulated month pays every active loan
// its minimum, then puts the whole extra budget on the highest-priority loan
// still active. The run stops when every loan is retired, when the interest
// paid exceeds constants.MaxTotalInterest, or after
// constants.MaxSimulationMonths months; either cap marks the result Truncated.
// The month cap can stop a slowly converging run, such as a tiny minimum on a
// near-zero rate, before the interest cap is reached.
func (s *StrategySimulator) Simulate(loans []Loan, method RepaymentMethod, additionalPayment float64) (RepaymentStrategy, error) {
	strategy := RepaymentStrategy{Method: method}
	switch method {
	case Avalanche:
		strategy.Name = constants.AvalancheName
		strategy.Description = constants.AvalancheDescription
	case Snowball:
		strategy.Name = constants.SnowballName
		strategy.Description = constants.SnowballDescription
	default:
		return RepaymentStrategy{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	active := make([]*simulatedLoan, 0, len(loans))
	for _, loan := range loans {
		c := loan.Clone()
		active = append(active, &simulatedLoan{loan: c, balance: c.Balance()})
	}
	prioritize(active, method)

	payoffOrder := make([]string, 0, len(loans))

	// Loans retired before the simulation starts lead the payoff order.
	remaining := active[:0]
	for _, sl := range active {
		if sl.balance <= 0 {
			payoffOrder = append(payoffOrder, sl.loan.Name)
			continue
		}
		remaining = append(remaining, sl)
	}
	active = remaining

	now := s.clock.Now()
	date := now
	payoffDate := now
	extraPayment := additionalPayment
	totalInterestPaid := 0.0
	months := 0

	for len(active) > 0 {
		retired := false

		// Minimum payment pass.
		next := active[:0]
		for _, sl := range active {
			interest := CalculateInterestPayment(sl.balance, sl.loan.InterestRate)
			principal := mathutil.Min(sl.loan.MinimumPayment-interest, sl.balance)
			sl.pay(date, sl.loan.MinimumPayment, principal, interest)
			totalInterestPaid += interest

			if sl.balance <= 0 {
				payoffOrder = append(payoffOrder, sl.loan.Name)
				extraPayment += sl.loan.MinimumPayment
				retired = true
				s.logger.Debug(fmt.Sprintf("%s: loan %s retired by minimum payment", date.Format(datetime.DateLayout), sl.loan.Name),
					zap.String("op", "loans.Simulate"),
					zap.String("method", string(method)),
				)
				continue
			}
			next = append(next, sl)
		}
		active = next

		// Extra payment pass.
		if len(active) > 0 && extraPayment > 0 {
			target := active[0]
			principal := mathutil.Min(extraPayment, target.balance)
			if principal > 0 {
				target.pay(date, principal, principal, 0)
				if target.balance <= 0 {
					payoffOrder = append(payoffOrder, target.loan.Name)
					extraPayment += target.loan.MinimumPayment
					active = active[1:]
					retired = true
					s.logger.Debug(fmt.Sprintf("%s: loan %s retired by extra payment", date.Format(datetime.DateLayout), target.loan.Name),
						zap.String("op", "loans.Simulate"),
						zap.String("method", string(method)),
					)
				}
			}
		}

		date = datetime.AddMonths(date, 1)
		months++
		if retired {
			payoffDate = date
		}

		if totalInterestPaid > constants.MaxTotalInterest || months >= constants.MaxSimulationMonths {
			if len(active) > 0 {
				strategy.Truncated = true
				payoffDate = date
				s.logger.Debug(fmt.Sprintf("simulation stopped after %d months with %d loans outstanding", months, len(active)),
					zap.String("op", "loans.Simulate"),
					zap.String("method", string(method)),
					zap.Float64("total_interest", totalInterestPaid),
				)
			}
			break
		}
	}

	strategy.TotalInterestPaid = totalInterestPaid
	strategy.PayoffDate = payoffDate
	strategy.LoanPayoffOrder = payoffOrder
	strategy.Months = months
	return strategy, nil
}

// prioritize orders loans by method. The sort is stable so ties keep
// portfolio order.
func prioritize(loans []*simulatedLoan, method RepaymentMethod) {
	switch method {
	case Avalanche:
		sort.SliceStable(loans, func(i, j int) bool {
			return loans[i].loan.InterestRate > loans[j].loan.InterestRate
		})
	case Snowball:
		sort.SliceStable(loans, func(i, j int) bool {
			return loans[i].balance < loans[j].balance
		})
	}
}
