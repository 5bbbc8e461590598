// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-tracker/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateReport checks if the report selection is one the CLI can render.
func ValidateReport(report string) error {
	switch report {
	case constants.ReportSummary, constants.ReportSchedule, constants.ReportStrategies,
		constants.ReportImpact, constants.ReportAll:
		return nil
	}
	return fmt.Errorf("expected report of %s, %s, %s, %s or %s, got %s",
		constants.ReportSummary, constants.ReportSchedule, constants.ReportStrategies,
		constants.ReportImpact, constants.ReportAll, report)
}

// ValidateExportFormat checks if the portfolio interchange format is supported.
func ValidateExportFormat(format string) error {
	if format != constants.ExportFormatJSON && format != constants.ExportFormatYAML {
		return fmt.Errorf("expected export format of %s or %s, got %s",
			constants.ExportFormatJSON, constants.ExportFormatYAML, format)
	}
	return nil
}
