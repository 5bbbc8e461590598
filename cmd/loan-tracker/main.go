package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iwvelando/loan-tracker/internal/config"
	"github.com/iwvelando/loan-tracker/internal/logging"
	"github.com/iwvelando/loan-tracker/internal/storage"
	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/output"
	"github.com/iwvelando/loan-tracker/pkg/portfolio"
	"github.com/iwvelando/loan-tracker/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	report := flag.String("report", constants.ReportAll, "report to print: summary, schedule, strategies, impact, all")
	extraFlag := flag.String("extra", "", "additional monthly payment override")
	importPath := flag.String("import", "", "replace the stored portfolio with a json or yaml file")
	exportPath := flag.String("export", "", "write the stored portfolio to a json or yaml file")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	if err := validation.ValidateReport(*report); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	additionalPayment := conf.Simulation.AdditionalPayment
	if *extraFlag != "" {
		additionalPayment, err = strconv.ParseFloat(*extraFlag, 64)
		if err != nil {
			logger.Fatal(fmt.Sprintf("invalid additional payment %q", *extraFlag),
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()
	clock := datetime.SystemClock{}

	store, err := storage.Open(ctx, conf.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open store",
			zap.String("op", "main"),
			zap.String("backend", conf.Storage.Backend),
			zap.Error(err),
		)
	}
	runErr := run(ctx, os.Stdout, store, conf, clock, logger, runOptions{
		report:            *report,
		outputFormat:      outputFormat,
		additionalPayment: additionalPayment,
		importPath:        *importPath,
		exportPath:        *exportPath,
	})
	if err := store.Close(); err != nil {
		logger.Warn("failed to close store", zap.String("op", "main"), zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal(runErr.Error(), zap.String("op", "main"))
	}
}

type runOptions struct {
	report            string
	outputFormat      string
	additionalPayment float64
	importPath        string
	exportPath        string
}

// run imports, loads, exports and reports the portfolio held in store. It
// leaves closing the store to the caller.
func run(ctx context.Context, w io.Writer, store storage.Store, conf *config.Configuration, clock datetime.Clock, logger *zap.Logger, opts runOptions) error {
	codec, err := storage.CodecFor(conf.Storage.Codec)
	if err != nil {
		return err
	}
	repo := storage.NewPortfolioRepository(store, codec, logger)

	if opts.importPath != "" {
		if err := importPortfolio(ctx, repo, opts.importPath); err != nil {
			return fmt.Errorf("failed to import portfolio from %s: %w", opts.importPath, err)
		}
	}

	current, err := loadOrSeed(ctx, repo, conf, clock, logger)
	if err != nil {
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	if opts.exportPath != "" {
		if err := exportPortfolio(ctx, repo, opts.exportPath); err != nil {
			return fmt.Errorf("failed to export portfolio to %s: %w", opts.exportPath, err)
		}
		logger.Info(fmt.Sprintf("exported %d loans to %s", len(current), opts.exportPath), zap.String("op", "main.run"))
	}

	reports, err := buildReports(portfolio.NewAnalyzer(logger, clock), current, opts.report, opts.additionalPayment)
	if err != nil {
		return fmt.Errorf("failed to compute reports: %w", err)
	}

	if err := output.Write(w, opts.outputFormat, reports); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	return nil
}

// loadOrSeed loads the stored portfolio and seeds it from the configured
// loans when the store holds none. Unreadable stored data is reported and
// left in place; the reports then cover an empty portfolio.
func loadOrSeed(ctx context.Context, repo *storage.PortfolioRepository, conf *config.Configuration, clock datetime.Clock, logger *zap.Logger) ([]loans.Loan, error) {
	current, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("stored portfolio could not be loaded, continuing with an empty portfolio",
			zap.String("op", "main.loadOrSeed"),
			zap.Error(err),
		)
		return current, nil
	}
	if len(current) > 0 || len(conf.Loans) == 0 {
		return current, nil
	}

	seeded, err := conf.Portfolio(clock)
	if err != nil {
		return nil, fmt.Errorf("converting configured loans: %w", err)
	}
	if err := repo.Save(ctx, seeded); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("seeded store with %d configured loans", len(seeded)),
		zap.String("op", "main.loadOrSeed"),
	)
	return seeded, nil
}

func buildReports(analyzer *portfolio.Analyzer, current []loans.Loan, report string, additionalPayment float64) (output.Reports, error) {
	var reports output.Reports
	all := report == constants.ReportAll

	if all || report == constants.ReportSummary {
		summary := analyzer.Summaries(current, additionalPayment)
		breakdown := analyzer.Breakdown(current, additionalPayment)
		reports.Summary = &summary
		reports.Breakdown = &breakdown
	}

	if all || report == constants.ReportSchedule {
		for _, loan := range current {
			reports.Schedules = append(reports.Schedules, output.LoanSchedule{
				Name:     loan.Name,
				Schedule: analyzer.Generator().GenerateSchedule(loan, additionalPayment),
			})
		}
	}

	if (all || report == constants.ReportStrategies) && len(current) > 0 {
		comparison, err := analyzer.Compare(current, additionalPayment)
		if err != nil {
			return output.Reports{}, err
		}
		reports.Comparison = &comparison
	}

	if all || report == constants.ReportImpact {
		if impact, ok := analyzer.ExtraPaymentImpact(current, additionalPayment); ok {
			reports.Impact = &impact
		}
	}

	return reports, nil
}

// exchangeFormat picks yaml for .yaml and .yml files and json otherwise.
func exchangeFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return constants.ExportFormatYAML
	}
	return constants.ExportFormatJSON
}

func importPortfolio(ctx context.Context, repo *storage.PortfolioRepository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = repo.Import(ctx, f, exchangeFormat(path))
	return err
}

func exportPortfolio(ctx context.Context, repo *storage.PortfolioRepository, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := repo.Export(ctx, f, exchangeFormat(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
