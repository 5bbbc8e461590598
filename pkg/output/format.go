// Package output provides utilities for formatting and displaying loan reports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/format"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/portfolio"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LoanSchedule is the projected schedule of one named loan.
type LoanSchedule struct {
	Name     string
	Schedule loans.Schedule
}

// Reports collects the sections to render. Nil and empty sections are
// skipped.
type Reports struct {
	Summary    *portfolio.Report
	Schedules  []LoanSchedule
	Comparison *portfolio.Comparison
	Impact     *portfolio.Impact
	Breakdown  *portfolio.PaymentBreakdown
}

// Write renders reports in the given output format.
func Write(w io.Writer, outputFormat string, reports Reports) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, reports)
	case constants.OutputFormatCSV:
		CsvFormat(w, reports)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
	return nil
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, reports Reports) {
	p := message.NewPrinter(language.English)

	if reports.Summary != nil {
		_, _ = fmt.Fprintf(w, "--- Loan summary ---\n")
		_, _ = fmt.Fprintf(w, "Loan | Remaining | Monthly | Total interest | Progress | Payoff\n")
		_, _ = fmt.Fprintf(w, "____ | _________ | _______ | ______________ | ________ | ______\n")
		for _, loan := range reports.Summary.Loans {
			prettySummaryRow(w, p, loan.Name, loan.Summary)
		}
		if reports.Summary.Combined != nil {
			prettySummaryRow(w, p, constants.CombinedLoanName, *reports.Summary.Combined)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	for _, s := range reports.Schedules {
		_, _ = fmt.Fprintf(w, "--- Amortization schedule for %s ---\n", s.Name)
		_, _ = fmt.Fprintf(w, "Date       | Payment | Principal | Interest | Balance\n")
		_, _ = fmt.Fprintf(w, "__________ | _______ | _________ | ________ | _______\n")
		for _, row := range s.Schedule.Rows {
			_, _ = p.Fprintf(w, "%s | $%.2f | $%.2f | $%.2f | $%.2f\n",
				row.Date.Format(constants.DateLayout), row.Payment, row.Principal, row.Interest, row.RemainingBalance)
		}
		if s.Schedule.Truncated {
			_, _ = fmt.Fprintf(w, "Schedule stopped after %d months before the balance reached zero\n", constants.MaxScheduleMonths)
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	if c := reports.Comparison; c != nil {
		_, _ = fmt.Fprintf(w, "--- Repayment strategies ---\n")
		for _, s := range []loans.RepaymentStrategy{c.Avalanche, c.Snowball} {
			_, _ = fmt.Fprintf(w, "%s: %s\n", s.Name, s.Description)
			_, _ = p.Fprintf(w, "  Total interest: $%.2f\n", s.TotalInterestPaid)
			_, _ = fmt.Fprintf(w, "  Debt free: %s (%d months)\n", format.Date(s.PayoffDate), s.Months)
			_, _ = fmt.Fprintf(w, "  Payoff order: %s\n", strings.Join(s.LoanPayoffOrder, " -> "))
			if s.Truncated {
				_, _ = fmt.Fprintf(w, "  Simulation stopped before every loan was repaid\n")
			}
		}
		_, _ = p.Fprintf(w, "Recommended: %s (saves $%.2f in interest)\n\n", c.Recommended, c.InterestSavings)
	}

	if i := reports.Impact; i != nil {
		_, _ = fmt.Fprintf(w, "--- Extra payment impact ---\n")
		_, _ = p.Fprintf(w, "Additional monthly payment: $%.2f (suggested maximum $%.2f)\n", i.AdditionalPayment, i.MaxAdditionalPayment)
		_, _ = p.Fprintf(w, "Baseline: payoff %s, total interest $%.2f\n", format.Date(i.Baseline.PayoffDate), i.Baseline.TotalInterest)
		_, _ = p.Fprintf(w, "With extra: payoff %s, total interest $%.2f\n", format.Date(i.Enhanced.PayoffDate), i.Enhanced.TotalInterest)
		_, _ = p.Fprintf(w, "Months saved: %d, interest saved: $%.2f\n\n", i.MonthsSaved, i.InterestSaved)
	}

	if b := reports.Breakdown; b != nil {
		_, _ = fmt.Fprintf(w, "--- Payment breakdown ---\n")
		_, _ = p.Fprintf(w, "Principal: $%.2f | Interest: $%.2f\n", b.TotalPrincipal, b.TotalInterest)
		_, _ = p.Fprintf(w, "Paid principal: $%.2f | Paid interest: $%.2f | Total paid: $%.2f\n", b.PaidPrincipal, b.PaidInterest, b.TotalPaid)
		_, _ = p.Fprintf(w, "Remaining principal: $%.2f | Future interest: $%.2f\n\n", b.RemainingPrincipal, b.FutureInterest)
	}
}

func prettySummaryRow(w io.Writer, p *message.Printer, name string, s loans.LoanSummary) {
	_, _ = p.Fprintf(w, "%s | $%.2f | $%.2f | $%.2f | %s | %s\n",
		name, s.RemainingBalance, s.MonthlyPayment, s.TotalInterest,
		format.Percentage(s.ProgressPercentage), format.Date(s.PayoffDate))
}

// CsvFormat outputs in comma-separated value format. Each section starts with
// its own header line and sections are separated by a blank line.
func CsvFormat(w io.Writer, reports Reports) {
	var sections []func()

	if reports.Summary != nil {
		sections = append(sections, func() {
			_, _ = fmt.Fprintf(w, `"loan","remaining balance","monthly payment","total interest","total payments","progress percentage","payoff date","truncated"`+"\n")
			for _, loan := range reports.Summary.Loans {
				csvSummaryRow(w, loan.Name, loan.Summary)
			}
			if reports.Summary.Combined != nil {
				csvSummaryRow(w, constants.CombinedLoanName, *reports.Summary.Combined)
			}
		})
	}

	if len(reports.Schedules) > 0 {
		sections = append(sections, func() {
			_, _ = fmt.Fprintf(w, `"loan","date","payment","principal","interest","remaining balance"`+"\n")
			for _, s := range reports.Schedules {
				for _, row := range s.Schedule.Rows {
					_, _ = fmt.Fprintf(w, `%s,"%s","%.2f","%.2f","%.2f","%.2f"`+"\n",
						quote(s.Name), row.Date.Format(constants.DateLayout), row.Payment, row.Principal, row.Interest, row.RemainingBalance)
				}
			}
		})
	}

	if c := reports.Comparison; c != nil {
		sections = append(sections, func() {
			_, _ = fmt.Fprintf(w, `"method","total interest","payoff date","months","payoff order","recommended","truncated"`+"\n")
			for _, s := range []loans.RepaymentStrategy{c.Avalanche, c.Snowball} {
				_, _ = fmt.Fprintf(w, `"%s","%.2f","%s","%d",%s,"%t","%t"`+"\n",
					s.Method, s.TotalInterestPaid, s.PayoffDate.Format(constants.DateLayout), s.Months,
					quote(strings.Join(s.LoanPayoffOrder, ";")), s.Method == c.Recommended, s.Truncated)
			}
		})
	}

	if i := reports.Impact; i != nil {
		sections = append(sections, func() {
			_, _ = fmt.Fprintf(w, `"additional payment","baseline payoff","enhanced payoff","baseline interest","enhanced interest","months saved","interest saved","max additional payment"`+"\n")
			_, _ = fmt.Fprintf(w, `"%.2f","%s","%s","%.2f","%.2f","%d","%.2f","%.2f"`+"\n",
				i.AdditionalPayment, i.Baseline.PayoffDate.Format(constants.DateLayout), i.Enhanced.PayoffDate.Format(constants.DateLayout),
				i.Baseline.TotalInterest, i.Enhanced.TotalInterest, i.MonthsSaved, i.InterestSaved, i.MaxAdditionalPayment)
		})
	}

	if b := reports.Breakdown; b != nil {
		sections = append(sections, func() {
			_, _ = fmt.Fprintf(w, `"total principal","total interest","paid principal","paid interest","total paid","remaining principal","future interest"`+"\n")
			_, _ = fmt.Fprintf(w, `"%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`+"\n",
				b.TotalPrincipal, b.TotalInterest, b.PaidPrincipal, b.PaidInterest, b.TotalPaid, b.RemainingPrincipal, b.FutureInterest)
		})
	}

	for n, section := range sections {
		if n > 0 {
			_, _ = fmt.Fprintf(w, "\n")
		}
		section()
	}
}

func csvSummaryRow(w io.Writer, name string, s loans.LoanSummary) {
	_, _ = fmt.Fprintf(w, `%s,"%.2f","%.2f","%.2f","%.2f","%.2f","%s","%t"`+"\n",
		quote(name), s.RemainingBalance, s.MonthlyPayment, s.TotalInterest, s.TotalPayments,
		s.ProgressPercentage, s.PayoffDate.Format(constants.DateLayout), s.Truncated)
}

// quote wraps a free-text field in double quotes, doubling embedded quotes.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
