package scheduler

import (
	"context"
	"fmt"
	"time"

	"payment-epayco/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type TransactionScheduler struct {
	cron         *cron.Cron
	transactions repository.TransactionRepository
	logger       *zap.Logger
	draftTTL     time.Duration
	spec         string
	now          func() time.Time
}

func NewTransactionScheduler(transactions repository.TransactionRepository, logger *zap.Logger, spec string, draftTTL time.Duration) *TransactionScheduler {
	// ePayco settles in Colombian time.
	location, err := time.LoadLocation("America/Bogota")
	if err != nil {
		logger.Warn("Error loading Bogota location, using UTC", zap.Error(err))
		location = time.UTC
	}

	return &TransactionScheduler{
		cron:         cron.New(cron.WithLocation(location)),
		transactions: transactions,
		logger:       logger,
		draftTTL:     draftTTL,
		spec:         spec,
		now:          time.Now,
	}
}

func (ts *TransactionScheduler) Start() error {
	entryID, err := ts.cron.AddFunc(ts.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := ts.CancelStaleDrafts(ctx); err != nil {
			ts.logger.Error("Stale draft sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling stale draft sweep: %w", err)
	}

	ts.logger.Info("Transaction scheduler started",
		zap.Int("entry_id", int(entryID)),
		zap.String("schedule", ts.spec),
		zap.Duration("draft_ttl", ts.draftTTL),
	)
	ts.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (ts *TransactionScheduler) Stop() {
	<-ts.cron.Stop().Done()
}

func (ts *TransactionScheduler) GetStatus() map[string]interface{} {
	entries := ts.cron.Entries()
	status := make(map[string]interface{})

	for i, entry := range entries {
		status[fmt.Sprintf("entry_%d", i)] = map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next.Format("2006-01-02 15:04:05"),
			"schedule": ts.spec,
		}
	}

	return status
}

// CancelStaleDrafts cancels checkouts that never reached ePayco within the draft TTL.
func (ts *TransactionScheduler) CancelStaleDrafts(ctx context.Context) (int64, error) {
	cutoff := ts.now().Add(-ts.draftTTL)
	cancelled, err := ts.transactions.CancelStaleDrafts(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		ts.logger.Info("Cancelled stale drafts", zap.Int64("count", cancelled), zap.Time("created_before", cutoff))
	}
	return cancelled, nil
}
