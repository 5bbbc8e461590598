package loans

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"go.uber.org/zap"
)

const simulationStart = "2025-01-15"

func newTestSimulator() *StrategySimulator {
	clock := datetime.FixedClock{Time: datetime.MustParseTime(datetime.DateLayout, simulationStart)}
	return NewStrategySimulator(zap.NewNop(), clock)
}

func simLoan(name string, rate, principal, minimum float64) Loan {
	return Loan{
		ID:             name,
		Name:           name,
		Principal:      principal,
		InterestRate:   rate,
		LoanTerm:       60,
		StartDate:      datetime.MustParseTime(datetime.DateLayout, "2024-01-01"),
		MinimumPayment: minimum,
	}
}

func monthsAfterStart(months int) string {
	start := datetime.MustParseTime(datetime.DateLayout, simulationStart)
	return datetime.AddMonths(start, months).Format(datetime.DateLayout)
}

func TestSimulate(t *testing.T) {
	// A has the higher rate but the larger balance, so the two methods disagree.
	diverging := []Loan{simLoan("A", 10, 5000, 100), simLoan("B", 5, 1000, 20)}
	reversed := []Loan{diverging[1], diverging[0]}
	agreeing := []Loan{simLoan("A", 10, 1000, 50), simLoan("B", 5, 5000, 100)}

	tests := []struct {
		name          string
		loans         []Loan
		method        RepaymentMethod
		extra         float64
		expectedOrder []string
		expectedTotal float64
		expectedMonth int
	}{
		{"Avalanche targets highest rate", diverging, Avalanche, 200, []string{"A", "B"}, 475.08, 21},
		{"Avalanche ignores input order", reversed, Avalanche, 200, []string{"A", "B"}, 475.08, 21},
		{"Snowball targets lowest balance", diverging, Snowball, 200, []string{"B", "A"}, 550.33, 21},
		{"Snowball ignores input order", reversed, Snowball, 200, []string{"B", "A"}, 550.33, 21},
		{"No extra payment avalanche", diverging, Avalanche, 0, []string{"B", "A"}, 1613.05, 64},
		{"No extra payment snowball", diverging, Snowball, 0, []string{"B", "A"}, 1613.05, 64},
		{"Methods agree avalanche", agreeing, Avalanche, 100, []string{"A", "B"}, 354.55, 26},
		{"Methods agree snowball", agreeing, Snowball, 100, []string{"A", "B"}, 354.55, 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestSimulator().Simulate(tt.loans, tt.method, tt.extra)
			if err != nil {
				t.Fatalf("Simulate() error = %v", err)
			}

			if !reflect.DeepEqual(result.LoanPayoffOrder, tt.expectedOrder) {
				t.Errorf("LoanPayoffOrder = %v, expected %v", result.LoanPayoffOrder, tt.expectedOrder)
			}
			if math.Abs(result.TotalInterestPaid-tt.expectedTotal) > 0.01 {
				t.Errorf("TotalInterestPaid = %.4f, expected %.2f", result.TotalInterestPaid, tt.expectedTotal)
			}
			if result.Months != tt.expectedMonth {
				t.Errorf("Months = %d, expected %d", result.Months, tt.expectedMonth)
			}
			if got := result.PayoffDate.Format(datetime.DateLayout); got != monthsAfterStart(tt.expectedMonth) {
				t.Errorf("PayoffDate = %s, expected %s", got, monthsAfterStart(tt.expectedMonth))
			}
			if result.Truncated {
				t.Error("Simulate() should not truncate a converging simulation")
			}
			if result.Method != tt.method {
				t.Errorf("Method = %q, expected %q", result.Method, tt.method)
			}
		})
	}
}

func TestSimulateNamesAndDescriptions(t *testing.T) {
	simulator := newTestSimulator()
	loans := []Loan{simLoan("A", 6, 1000, 100)}

	avalanche, err := simulator.Simulate(loans, Avalanche, 0)
	if err != nil {
		t.Fatalf("Simulate(avalanche) error = %v", err)
	}
	if avalanche.Name != constants.AvalancheName || avalanche.Description != constants.AvalancheDescription {
		t.Errorf("avalanche name/description = %q/%q", avalanche.Name, avalanche.Description)
	}

	snowball, err := simulator.Simulate(loans, Snowball, 0)
	if err != nil {
		t.Fatalf("Simulate(snowball) error = %v", err)
	}
	if snowball.Name != constants.SnowballName || snowball.Description != constants.SnowballDescription {
		t.Errorf("snowball name/description = %q/%q", snowball.Name, snowball.Description)
	}
}

func TestSimulateUnknownMethod(t *testing.T) {
	_, err := newTestSimulator().Simulate([]Loan{simLoan("A", 5, 100, 10)}, RepaymentMethod("hybrid"), 0)
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("Simulate() error = %v, expected ErrUnknownMethod", err)
	}
}

func TestSimulateEmptyPortfolio(t *testing.T) {
	result, err := newTestSimulator().Simulate(nil, Avalanche, 500)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if result.TotalInterestPaid != 0 {
		t.Errorf("TotalInterestPaid = %v, expected 0", result.TotalInterestPaid)
	}
	if len(result.LoanPayoffOrder) != 0 {
		t.Errorf("LoanPayoffOrder = %v, expected empty", result.LoanPayoffOrder)
	}
	if result.Months != 0 {
		t.Errorf("Months = %d, expected 0", result.Months)
	}
	if got := result.PayoffDate.Format(datetime.DateLayout); got != simulationStart {
		t.Errorf("PayoffDate = %s, expected %s", got, simulationStart)
	}
}

func TestSimulateAlreadyRetiredLoansLead(t *testing.T) {
	retired := simLoan("Z", 0, 500, 10).WithPayment(Payment{ID: "p", Amount: 500, Principal: 500})
	loans := []Loan{simLoan("A", 6, 1200, 100), retired}

	result, err := newTestSimulator().Simulate(loans, Avalanche, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !reflect.DeepEqual(result.LoanPayoffOrder, []string{"Z", "A"}) {
		t.Errorf("LoanPayoffOrder = %v, expected [Z A]", result.LoanPayoffOrder)
	}
	if math.Abs(result.TotalInterestPaid-40.66) > 0.01 {
		t.Errorf("TotalInterestPaid = %.4f, expected 40.66", result.TotalInterestPaid)
	}
	if result.Months != 13 {
		t.Errorf("Months = %d, expected 13", result.Months)
	}
}

func TestSimulatePayoffOrderContainsEveryLoan(t *testing.T) {
	loans := []Loan{
		simLoan("Federal", 4.5, 12000, 150),
		simLoan("Private", 9.0, 3000, 80),
		simLoan("Personal", 12.0, 800, 40),
		simLoan("Subsidized", 3.0, 2000, 50),
	}

	for _, method := range []RepaymentMethod{Avalanche, Snowball} {
		t.Run(string(method), func(t *testing.T) {
			result, err := newTestSimulator().Simulate(loans, method, 150)
			if err != nil {
				t.Fatalf("Simulate() error = %v", err)
			}
			if len(result.LoanPayoffOrder) != len(loans) {
				t.Fatalf("LoanPayoffOrder = %v, expected %d entries", result.LoanPayoffOrder, len(loans))
			}
			seen := make(map[string]int)
			for _, name := range result.LoanPayoffOrder {
				seen[name]++
			}
			for _, loan := range loans {
				if seen[loan.Name] != 1 {
					t.Errorf("loan %s appears %d times in payoff order", loan.Name, seen[loan.Name])
				}
			}
		})
	}
}

func TestSimulateDoesNotModifyLoans(t *testing.T) {
	loans := []Loan{
		simLoan("A", 10, 5000, 100).WithPayment(Payment{ID: "p1", Amount: 100, Principal: 60, Interest: 40}),
		simLoan("B", 5, 1000, 20),
	}
	before := []Loan{loans[0].Clone(), loans[1].Clone()}

	if _, err := newTestSimulator().Simulate(loans, Snowball, 200); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !reflect.DeepEqual(loans, before) {
		t.Error("Simulate() modified the input loans")
	}
	if loans[0].Name != "A" {
		t.Error("Simulate() reordered the input slice")
	}
}

func TestSimulateMoreExtraNeverCostsMore(t *testing.T) {
	loans := []Loan{simLoan("A", 10, 5000, 100), simLoan("B", 5, 1000, 20), simLoan("C", 7, 2500, 60)}
	simulator := newTestSimulator()

	for _, method := range []RepaymentMethod{Avalanche, Snowball} {
		previous := math.Inf(1)
		for _, extra := range []float64{0, 50, 100, 250, 500} {
			result, err := simulator.Simulate(loans, method, extra)
			if err != nil {
				t.Fatalf("Simulate() error = %v", err)
			}
			if result.TotalInterestPaid > previous {
				t.Errorf("%s with extra %.0f paid %.2f interest, more than %.2f with less extra",
					method, extra, result.TotalInterestPaid, previous)
			}
			previous = result.TotalInterestPaid
		}
	}
}

func TestSimulateStopsOnInterestCap(t *testing.T) {
	// The minimum payment never covers interest, so the balance grows forever.
	loans := []Loan{simLoan("Underwater", 12, 10000, 50)}

	result, err := newTestSimulator().Simulate(loans, Avalanche, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !result.Truncated {
		t.Error("Simulate() should report truncation")
	}
	if result.TotalInterestPaid <= constants.MaxTotalInterest {
		t.Errorf("TotalInterestPaid = %.2f, expected above cap", result.TotalInterestPaid)
	}
	if result.Months >= constants.MaxSimulationMonths {
		t.Errorf("Months = %d, expected the interest cap to stop first", result.Months)
	}
	if len(result.LoanPayoffOrder) != 0 {
		t.Errorf("LoanPayoffOrder = %v, expected empty", result.LoanPayoffOrder)
	}
	if got := result.PayoffDate.Format(datetime.DateLayout); got != monthsAfterStart(result.Months) {
		t.Errorf("PayoffDate = %s, expected %s", got, monthsAfterStart(result.Months))
	}
}

func TestSimulateStopsOnMonthCap(t *testing.T) {
	// No interest and no payments, so nothing ever changes.
	loans := []Loan{simLoan("Stuck", 0, 10000, 0)}

	result, err := newTestSimulator().Simulate(loans, Snowball, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !result.Truncated {
		t.Error("Simulate() should report truncation")
	}
	if result.Months != constants.MaxSimulationMonths {
		t.Errorf("Months = %d, expected %d", result.Months, constants.MaxSimulationMonths)
	}
	if result.TotalInterestPaid != 0 {
		t.Errorf("TotalInterestPaid = %v, expected 0", result.TotalInterestPaid)
	}
}

func TestSimulateMonthCapStopsSlowPayoff(t *testing.T) {
	// Valid but slow: 20000 months at 50 cents a month.
	loans := []Loan{simLoan("Slow", 0, 10000, 0.5)}

	result, err := newTestSimulator().Simulate(loans, Avalanche, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !result.Truncated {
		t.Error("Simulate() should report truncation")
	}
	if result.Months != constants.MaxSimulationMonths {
		t.Errorf("Months = %d, expected %d", result.Months, constants.MaxSimulationMonths)
	}
	if result.TotalInterestPaid > constants.MaxTotalInterest {
		t.Errorf("TotalInterestPaid = %.2f, expected the month cap to stop first", result.TotalInterestPaid)
	}
}
