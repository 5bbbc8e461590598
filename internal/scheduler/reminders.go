package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/iwvelando/loan-tracker/pkg/format"
	"github.com/iwvelando/loan-tracker/pkg/loans"
	"github.com/iwvelando/loan-tracker/pkg/portfolio"
	"go.uber.org/zap"
)

// PortfolioLoader loads the current portfolio.
type PortfolioLoader interface {
	Load(ctx context.Context) ([]loans.Loan, error)
}

// ReminderJob logs unpaid payments falling due within a look-ahead window.
type ReminderJob struct {
	loader        PortfolioLoader
	clock         datetime.Clock
	lookaheadDays int
	logger        *zap.Logger

	mu      sync.Mutex
	lastDue []portfolio.PaymentReminder
}

// NewReminderJob creates a reminder job. A non-positive lookahead uses the
// default window.
func NewReminderJob(loader PortfolioLoader, clock datetime.Clock, lookaheadDays int, logger *zap.Logger) *ReminderJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookaheadDays <= 0 {
		lookaheadDays = constants.DefaultReminderLookaheadDays
	}
	return &ReminderJob{
		loader:        loader,
		clock:         datetime.ClockOrSystem(clock),
		lookaheadDays: lookaheadDays,
		logger:        logger,
	}
}

// Name identifies the job in logs.
func (j *ReminderJob) Name() string {
	return "payment-reminders"
}

// Run loads the portfolio and logs every due reminder.
func (j *ReminderJob) Run(ctx context.Context) error {
	loaded, err := j.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading portfolio for reminders: %w", err)
	}

	now := j.clock.Now()
	due := portfolio.DueWithin(portfolio.Reminders(loaded, now), now, j.lookaheadDays)
	for _, r := range due {
		j.logger.Info(fmt.Sprintf("payment of %s for %s due %s", format.Currency(r.Amount), r.LoanName, format.Date(r.DueDate)),
			zap.String("op", "scheduler.ReminderJob"),
			zap.String("loan_id", r.LoanID),
		)
	}

	j.mu.Lock()
	j.lastDue = due
	j.mu.Unlock()
	return nil
}

// LastDue returns the reminders found by the most recent run.
func (j *ReminderJob) LastDue() []portfolio.PaymentReminder {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]portfolio.PaymentReminder(nil), j.lastDue...)
}
