// Package portfolio builds the multi-loan views on top of the loan engine:
// the merged "All Loans" loan, strategy comparison, extra payment impact,
// payment breakdown, reminders and edits to the loan list.
package portfolio

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/mathutil"
	"go.uber.org/zap"
)

// Analyzer runs engine computations across a whole portfolio.
type Analyzer struct {
	logger    *zap.Logger
	clock     datetime.Clock
	generator *loans.AmortizationScheduleGenerator
	simulator *loans.StrategySimulator
}

// NewAnalyzer creates an Analyzer sharing one logger and clock with the
// engine components it drives.
func NewAnalyzer(logger *zap.Logger, clock datetime.Clock) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock = datetime.ClockOrSystem(clock)
	return &Analyzer{
		logger:    logger,
		clock:     clock,
		generator: loans.NewAmortizationScheduleGenerator(logger, clock),
		simulator: loans.NewStrategySimulator(logger, clock),
	}
}

// Generator exposes the schedule generator used by the analyzer.
func (a *Analyzer) Generator() *loans.AmortizationScheduleGenerator {
	return a.generator
}

// Merge combines a portfolio into the synthetic "All Loans" loan. Principal
// and minimum payments are summed, the rate is the principal-weighted mean,
// the term is the longest term and the start is the earliest start. It
// returns false for an empty portfolio.
func Merge(portfolio []loans.Loan) (loans.Loan, bool) {
	if len(portfolio) == 0 {
		return loans.Loan{}, false
	}

	principals := make([]float64, len(portfolio))
	rates := make([]float64, len(portfolio))
	minimums := make([]float64, len(portfolio))
	starts := make([]time.Time, len(portfolio))
	payments := 0
	term := 0

	for i, loan := range portfolio {
		principals[i] = loan.Principal
		rates[i] = loan.InterestRate
		minimums[i] = loan.MinimumPayment
		starts[i] = loan.StartDate
		payments += len(loan.PaymentsMade)
		if loan.LoanTerm > term {
			term = loan.LoanTerm
		}
	}

	history := make([]loans.Payment, 0, payments)
	for _, loan := range portfolio {
		history = append(history, loan.PaymentsMade...)
	}

	return loans.Loan{
		ID:             constants.CombinedLoanID,
		Name:           constants.CombinedLoanName,
		Principal:      mathutil.Sum(principals),
		InterestRate:   mathutil.WeightedMean(rates, principals),
		LoanTerm:       term,
		StartDate:      datetime.Earliest(starts...),
		MinimumPayment: mathutil.Sum(minimums),
		PaymentsMade:   history,
	}, true
}

// LoanReport pairs a loan with its summary.
type LoanReport struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Summary loans.LoanSummary `json:"summary"`
}

// Report is the summary of every loan plus the merged loan.
type Report struct {
	Combined *loans.LoanSummary `json:"combined"`
	Loans    []LoanReport       `json:"loans"`
}

// Summaries summarizes every loan and the merged loan. Combined is nil for an
// empty portfolio.
func (a *Analyzer) Summaries(portfolio []loans.Loan, additionalPayment float64) Report {
	report := Report{Loans: make([]LoanReport, 0, len(portfolio))}
	for _, loan := range portfolio {
		report.Loans = append(report.Loans, LoanReport{
			ID:      loan.ID,
			Name:    loan.Name,
			Summary: a.generator.Summarize(loan, additionalPayment),
		})
	}

	if merged, ok := Merge(portfolio); ok {
		summary := a.generator.Summarize(merged, additionalPayment)
		report.Combined = &summary
	}
	return report
}

// Find returns the loan with the given id.
func Find(portfolio []loans.Loan, id string) (loans.Loan, error) {
	for _, loan := range portfolio {
		if loan.ID == id {
			return loan.Clone(), nil
		}
	}
	return loans.Loan{}, fmt.Errorf("%w: %s", ErrLoanNotFound, id)
}
