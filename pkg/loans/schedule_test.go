package loans

import (
	"math"
	"testing"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"go.uber.org/zap"
)

func studentLoan() Loan {
	return Loan{
		ID:             "student-1",
		Name:           "Federal Direct",
		Principal:      10000,
		InterestRate:   5,
		LoanTerm:       60,
		StartDate:      datetime.MustParseTime(datetime.DateLayout, "2025-01-01"),
		MinimumPayment: 188.71,
	}
}

func newTestGenerator(now string) *AmortizationScheduleGenerator {
	clock := datetime.FixedClock{Time: datetime.MustParseTime(datetime.DateLayout, now)}
	return NewAmortizationScheduleGenerator(zap.NewNop(), clock)
}

func TestNewAmortizationScheduleGenerator(t *testing.T) {
	logger := zap.NewNop()
	generator := NewAmortizationScheduleGenerator(logger, nil)

	if generator == nil {
		t.Fatal("NewAmortizationScheduleGenerator() returned nil")
	}
	if generator.logger != logger {
		t.Error("NewAmortizationScheduleGenerator() logger not set correctly")
	}
	if _, ok := generator.clock.(datetime.SystemClock); !ok {
		t.Errorf("nil clock should default to SystemClock, got %T", generator.clock)
	}

	if g := NewAmortizationScheduleGenerator(nil, nil); g.logger == nil {
		t.Error("nil logger should be replaced with a no-op logger")
	}
}

func TestGenerateSchedule(t *testing.T) {
	tests := []struct {
		name             string
		now              string
		loan             func() Loan
		additional       float64
		expectedRows     int
		expectedFirst    string
		firstPrincipal   float64
		firstInterest    float64
		expectTruncation bool
	}{
		{
			name:           "Future start uses start date",
			now:            "2024-06-01",
			loan:           studentLoan,
			expectedRows:   60,
			expectedFirst:  "2025-01-01",
			firstPrincipal: 147.0457,
			firstInterest:  41.6667,
		},
		{
			name:           "Past start uses current date",
			now:            "2025-06-15",
			loan:           studentLoan,
			expectedRows:   60,
			expectedFirst:  "2025-06-15",
			firstPrincipal: 147.0457,
			firstInterest:  41.6667,
		},
		{
			name: "Recorded payments reduce starting balance",
			now:  "2024-06-01",
			loan: func() Loan {
				return studentLoan().WithPayment(Payment{ID: "p", Amount: 4000, Principal: 4000})
			},
			expectedRows:   35,
			expectedFirst:  "2025-01-01",
			firstPrincipal: 163.7123,
			firstInterest:  25.0,
		},
		{
			name:           "Additional payment shortens schedule",
			now:            "2024-06-01",
			loan:           studentLoan,
			additional:     100,
			expectedRows:   38,
			expectedFirst:  "2025-01-01",
			firstPrincipal: 247.0457,
			firstInterest:  41.6667,
		},
		{
			name: "Zero interest",
			now:  "2024-06-01",
			loan: func() Loan {
				l := studentLoan()
				l.Principal = 12000
				l.InterestRate = 0
				return l
			},
			expectedRows:   60,
			expectedFirst:  "2025-01-01",
			firstPrincipal: 200,
			firstInterest:  0,
		},
		{
			name: "Negative amortization is capped",
			now:  "2024-06-01",
			loan: func() Loan {
				l := studentLoan()
				l.InterestRate = 12
				return l
			},
			additional:       -200,
			expectedRows:     constants.MaxScheduleMonths,
			expectedFirst:    "2025-01-01",
			firstPrincipal:   -77.5555,
			firstInterest:    100,
			expectTruncation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := newTestGenerator(tt.now).GenerateSchedule(tt.loan(), tt.additional)

			rows := len(schedule.Rows)
			if tt.expectTruncation {
				if rows != tt.expectedRows {
					t.Fatalf("GenerateSchedule() rows = %d, expected %d", rows, tt.expectedRows)
				}
			} else if rows != tt.expectedRows && rows != tt.expectedRows+1 {
				// One extra sub-cent row can appear from floating point residue.
				t.Fatalf("GenerateSchedule() rows = %d, expected %d", rows, tt.expectedRows)
			}
			if schedule.Truncated != tt.expectTruncation {
				t.Errorf("GenerateSchedule() truncated = %t, expected %t", schedule.Truncated, tt.expectTruncation)
			}

			first := schedule.Rows[0]
			if got := first.Date.Format(datetime.DateLayout); got != tt.expectedFirst {
				t.Errorf("first row date = %s, expected %s", got, tt.expectedFirst)
			}
			if math.Abs(first.Principal-tt.firstPrincipal) > 0.001 {
				t.Errorf("first row principal = %.4f, expected %.4f", first.Principal, tt.firstPrincipal)
			}
			if math.Abs(first.Interest-tt.firstInterest) > 0.001 {
				t.Errorf("first row interest = %.4f, expected %.4f", first.Interest, tt.firstInterest)
			}

			for i := 1; i < rows; i++ {
				if got, want := schedule.Rows[i].Date, datetime.AddMonths(schedule.Rows[i-1].Date, 1); !got.Equal(want) {
					t.Fatalf("row %d date = %v, expected %v", i, got, want)
				}
			}

			if !tt.expectTruncation {
				if last := schedule.Rows[rows-1]; last.RemainingBalance > 0 {
					t.Errorf("final balance = %v, expected zero or below", last.RemainingBalance)
				}
			}
		})
	}
}

func TestGenerateScheduleRepaysBalance(t *testing.T) {
	loan := studentLoan().WithPayment(Payment{ID: "p", Amount: 1000, Principal: 950, Interest: 50})
	schedule := newTestGenerator("2024-06-01").GenerateSchedule(loan, 25)

	if got := schedule.TotalPrincipal(); math.Abs(got-loan.Balance()) > 1e-6 {
		t.Errorf("schedule principal = %.6f, expected balance %.6f", got, loan.Balance())
	}
}

func TestGenerateScheduleAdditionalPaymentSavesInterest(t *testing.T) {
	generator := newTestGenerator("2024-06-01")

	base := generator.GenerateSchedule(studentLoan(), 0)
	extra := generator.GenerateSchedule(studentLoan(), 100)

	if len(extra.Rows) >= len(base.Rows) {
		t.Errorf("additional payment rows = %d, expected fewer than %d", len(extra.Rows), len(base.Rows))
	}
	if extra.TotalInterest() >= base.TotalInterest() {
		t.Errorf("additional payment interest = %.2f, expected less than %.2f", extra.TotalInterest(), base.TotalInterest())
	}
	if math.Abs(base.TotalInterest()-1322.74) > 0.01 {
		t.Errorf("base interest = %.2f, expected 1322.74", base.TotalInterest())
	}
	if math.Abs(extra.TotalInterest()-822.16) > 0.01 {
		t.Errorf("extra interest = %.2f, expected 822.16", extra.TotalInterest())
	}
}

func TestGenerateSchedulePaidOffLoan(t *testing.T) {
	loan := studentLoan().WithPayment(Payment{ID: "p", Amount: 10000, Principal: 10000})
	schedule := newTestGenerator("2024-06-01").GenerateSchedule(loan, 0)

	if schedule.Rows == nil {
		t.Error("paid-off loan should return an empty, non-nil schedule")
	}
	if len(schedule.Rows) != 0 {
		t.Errorf("paid-off loan schedule has %d rows, expected 0", len(schedule.Rows))
	}
	if schedule.Truncated {
		t.Error("paid-off loan schedule should not be truncated")
	}
}

func TestGenerateScheduleDoesNotModifyLoan(t *testing.T) {
	loan := studentLoan().WithPayment(Payment{ID: "p", Amount: 500, Principal: 460, Interest: 40})
	before := loan.Clone()

	newTestGenerator("2024-06-01").GenerateSchedule(loan, 50)

	if len(loan.PaymentsMade) != len(before.PaymentsMade) || loan.PaymentsMade[0] != before.PaymentsMade[0] {
		t.Error("GenerateSchedule() modified the loan's payment history")
	}
}

func TestSummarize(t *testing.T) {
	paymentDate := datetime.MustParseTime(datetime.DateLayout, "2025-01-01")

	t.Run("Loan with one payment", func(t *testing.T) {
		loan := studentLoan().WithPayment(Payment{
			ID: "p1", Date: paymentDate, Amount: 188.71, Principal: 147.05, Interest: 41.66,
		})
		generator := newTestGenerator("2024-06-01")
		schedule := generator.GenerateSchedule(loan, 0)
		summary := generator.Summarize(loan, 0)

		if summary.TotalPrincipal != 10000 {
			t.Errorf("TotalPrincipal = %.2f, expected 10000", summary.TotalPrincipal)
		}
		expectedInterest := 41.66 + schedule.TotalInterest()
		if math.Abs(summary.TotalInterest-expectedInterest) > 1e-9 {
			t.Errorf("TotalInterest = %.4f, expected %.4f", summary.TotalInterest, expectedInterest)
		}
		if math.Abs(summary.TotalPayments-(10000+expectedInterest)) > 1e-9 {
			t.Errorf("TotalPayments = %.4f, expected %.4f", summary.TotalPayments, 10000+expectedInterest)
		}
		if math.Abs(summary.RemainingBalance-9852.95) > 1e-9 {
			t.Errorf("RemainingBalance = %.2f, expected 9852.95", summary.RemainingBalance)
		}
		if math.Abs(summary.ProgressPercentage-1.4705) > 1e-9 {
			t.Errorf("ProgressPercentage = %.4f, expected 1.4705", summary.ProgressPercentage)
		}
		if summary.MonthlyPayment != 188.71 {
			t.Errorf("MonthlyPayment = %.2f, expected 188.71", summary.MonthlyPayment)
		}
		if !summary.PayoffDate.Equal(schedule.Rows[len(schedule.Rows)-1].Date) {
			t.Errorf("PayoffDate = %v, expected last schedule row date", summary.PayoffDate)
		}
	})

	t.Run("Additional payment raises monthly payment", func(t *testing.T) {
		summary := newTestGenerator("2024-06-01").Summarize(studentLoan(), 75)
		if math.Abs(summary.MonthlyPayment-263.71) > 1e-9 {
			t.Errorf("MonthlyPayment = %.2f, expected 263.71", summary.MonthlyPayment)
		}
	})

	t.Run("Paid-off loan uses last payment date", func(t *testing.T) {
		lastDate := datetime.MustParseTime(datetime.DateLayout, "2026-08-01")
		loan := studentLoan().
			WithPayment(Payment{ID: "p1", Date: paymentDate, Amount: 6000, Principal: 6000}).
			WithPayment(Payment{ID: "p2", Date: lastDate, Amount: 4100, Principal: 4000, Interest: 100})
		summary := newTestGenerator("2024-06-01").Summarize(loan, 0)

		if !summary.PayoffDate.Equal(lastDate) {
			t.Errorf("PayoffDate = %v, expected %v", summary.PayoffDate, lastDate)
		}
		if summary.ProgressPercentage != 100 {
			t.Errorf("ProgressPercentage = %.2f, expected 100", summary.ProgressPercentage)
		}
		if summary.RemainingBalance != 0 {
			t.Errorf("RemainingBalance = %.2f, expected 0", summary.RemainingBalance)
		}
		if summary.TotalInterest != 100 {
			t.Errorf("TotalInterest = %.2f, expected 100", summary.TotalInterest)
		}
	})

	t.Run("Empty loan uses current time", func(t *testing.T) {
		generator := newTestGenerator("2024-06-01")
		summary := generator.Summarize(Loan{Name: "Empty", LoanTerm: 12}, 0)

		if !summary.PayoffDate.Equal(datetime.MustParseTime(datetime.DateLayout, "2024-06-01")) {
			t.Errorf("PayoffDate = %v, expected clock time", summary.PayoffDate)
		}
		if !math.IsNaN(summary.ProgressPercentage) {
			t.Errorf("ProgressPercentage = %v, expected NaN for zero principal", summary.ProgressPercentage)
		}
	})

	t.Run("Truncated schedule is reported", func(t *testing.T) {
		loan := studentLoan()
		loan.InterestRate = 12
		summary := newTestGenerator("2024-06-01").Summarize(loan, -200)
		if !summary.Truncated {
			t.Error("Summarize() should report a truncated schedule")
		}
	})
}
