package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PaymentStore is the slice of the payment repository the job needs.
type PaymentStore interface {
	FailStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

// Job fails subscription payments that were begun but never confirmed by
// a provider webhook, so abandoned checkouts don't pile up as pending.
type Job struct {
	payments   PaymentStore
	pendingTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

func New(payments PaymentStore, pendingTTL time.Duration, logger *zap.Logger) *Job {
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		payments:   payments,
		pendingTTL: pendingTTL,
		now:        time.Now,
		logger:     logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.payments == nil {
		return nil
	}

	cutoff := j.now().Add(-j.pendingTTL)
	failed, err := j.payments.FailStalePending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("fail stale pending payments: %w", err)
	}
	if failed > 0 {
		j.logger.Info("stale pending payments failed", zap.Int("count", failed))
	}

	return nil
}

// Start runs the job on a fixed interval until ctx is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("payment cleanup run failed", zap.Error(err))
			}
		}
	}
}
