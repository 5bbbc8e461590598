// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/loan-tracker/pkg/portfolio"
)

// FindLoanReport finds a loan report by id in the report.
// Returns a pointer to the loan report if found, nil otherwise.
func FindLoanReport(report portfolio.Report, id string) *portfolio.LoanReport {
	for i := range report.Loans {
		if report.Loans[i].ID == id {
			return &report.Loans[i]
		}
	}
	return nil
}

// WithinCents reports whether two currency amounts agree to within the given
// number of cents.
func WithinCents(a, b float64, cents int) bool {
	return math.Abs(a-b) <= float64(cents)/100+1e-9
}
