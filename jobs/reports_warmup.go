package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// ReportWarmer recomputes and caches the aging reports.
type ReportWarmer interface {
	Warmup(ctx context.Context) error
}

// NewReportsWarmupHandler returns the handler for TaskReportsWarmup.
func NewReportsWarmupHandler(logger *slog.Logger, warmer ReportWarmer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		if err := warmer.Warmup(ctx); err != nil {
			logger.Error("reports warmup", slog.Any("error", err))
			return err
		}
		logger.Info("reports warmup done", slog.Duration("elapsed", time.Since(start)))
		return nil
	}
}
