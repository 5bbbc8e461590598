package portfolio

import (
	"fmt"
	"math"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"go.uber.org/zap"
)

// Comparison holds both strategy results and the recommended method.
type Comparison struct {
	Avalanche       loans.RepaymentStrategy `json:"avalanche"`
	Snowball        loans.RepaymentStrategy `json:"snowball"`
	Recommended     loans.RepaymentMethod   `json:"recommended"`
	InterestSavings float64                 `json:"interestSavings"`
}

// Compare simulates both repayment methods with the same extra budget.
// Avalanche is recommended only when it pays strictly less interest; ties go
// to snowball. InterestSavings is the absolute difference in interest.
func (a *Analyzer) Compare(portfolio []loans.Loan, additionalPayment float64) (Comparison, error) {
	avalanche, err := a.simulator.Simulate(portfolio, loans.Avalanche, additionalPayment)
	if err != nil {
		return Comparison{}, fmt.Errorf("simulating avalanche: %w", err)
	}
	snowball, err := a.simulator.Simulate(portfolio, loans.Snowball, additionalPayment)
	if err != nil {
		return Comparison{}, fmt.Errorf("simulating snowball: %w", err)
	}

	comparison := Comparison{
		Avalanche:       avalanche,
		Snowball:        snowball,
		Recommended:     loans.Snowball,
		InterestSavings: math.Abs(avalanche.TotalInterestPaid - snowball.TotalInterestPaid),
	}
	if avalanche.TotalInterestPaid < snowball.TotalInterestPaid {
		comparison.Recommended = loans.Avalanche
	}

	a.logger.Debug(fmt.Sprintf("compared strategies for %d loans, recommending %s", len(portfolio), comparison.Recommended),
		zap.String("op", "portfolio.Compare"),
		zap.Float64("savings", comparison.InterestSavings),
	)
	return comparison, nil
}

// Impact compares the merged loan with and without an additional payment.
type Impact struct {
	AdditionalPayment    float64           `json:"additionalPayment"`
	Baseline             loans.LoanSummary `json:"baseline"`
	Enhanced             loans.LoanSummary `json:"enhanced"`
	MonthsSaved          int               `json:"monthsSaved"`
	InterestSaved        float64           `json:"interestSaved"`
	MaxAdditionalPayment float64           `json:"maxAdditionalPayment"`
}

// ExtraPaymentImpact summarizes the merged loan at zero and at
// additionalPayment. Months saved is the payoff date difference in 30-day
// months, rounded. It returns false for an empty portfolio.
func (a *Analyzer) ExtraPaymentImpact(portfolio []loans.Loan, additionalPayment float64) (Impact, bool) {
	merged, ok := Merge(portfolio)
	if !ok {
		return Impact{}, false
	}

	baseline := a.generator.Summarize(merged, 0)
	enhanced := a.generator.Summarize(merged, additionalPayment)
	days := baseline.PayoffDate.Sub(enhanced.PayoffDate).Hours() / 24

	return Impact{
		AdditionalPayment:    additionalPayment,
		Baseline:             baseline,
		Enhanced:             enhanced,
		MonthsSaved:          int(math.Round(days / constants.DaysPerMonthApprox)),
		InterestSaved:        baseline.TotalInterest - enhanced.TotalInterest,
		MaxAdditionalPayment: merged.MinimumPayment * constants.MaxAdditionalShare,
	}, true
}

// PaymentBreakdown splits lifetime loan cost into what has been paid and what
// the schedules still project.
type PaymentBreakdown struct {
	TotalPrincipal     float64 `json:"totalPrincipal"`
	TotalInterest      float64 `json:"totalInterest"`
	PaidPrincipal      float64 `json:"paidPrincipal"`
	PaidInterest       float64 `json:"paidInterest"`
	TotalPaid          float64 `json:"totalPaid"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
	FutureInterest     float64 `json:"futureInterest"`
}

// Breakdown totals recorded payments and each loan's projected schedule.
func (a *Analyzer) Breakdown(portfolio []loans.Loan, additionalPayment float64) PaymentBreakdown {
	var b PaymentBreakdown
	for _, loan := range portfolio {
		b.PaidPrincipal += loan.PaidPrincipal()
		b.PaidInterest += loan.PaidInterest()
		b.TotalPaid += loan.PaidAmount()

		schedule := a.generator.GenerateSchedule(loan, additionalPayment)
		b.RemainingPrincipal += schedule.TotalPrincipal()
		b.FutureInterest += schedule.TotalInterest()
	}
	b.TotalPrincipal = b.PaidPrincipal + b.RemainingPrincipal
	b.TotalInterest = b.PaidInterest + b.FutureInterest
	return b
}
