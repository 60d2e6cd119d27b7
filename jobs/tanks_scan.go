package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/forecourt-hq/forecourt/internal/inventory"
)

// TankWatcher supplies tanks at or under their reorder level.
type TankWatcher interface {
	LowTanks(ctx context.Context) ([]inventory.TankLevel, error)
}

// TankScanConfig collects dependencies for the tank level scan.
type TankScanConfig struct {
	Logger  *slog.Logger
	Tanks   TankWatcher
	Client  *Client
	AlertTo string
}

// NewTanksScanHandler returns the handler for TaskTanksScan. For every
// tank under its reorder level it logs a warning and, when a client and
// recipient are configured, enqueues an alert email.
func NewTanksScanHandler(cfg TankScanConfig) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		low, err := cfg.Tanks.LowTanks(ctx)
		if err != nil {
			cfg.Logger.Error("tank scan", slog.Any("error", err))
			return err
		}
		for _, tank := range low {
			cfg.Logger.Warn("tank under reorder level",
				slog.Int64("tank_id", tank.TankID),
				slog.String("name", tank.Name),
				slog.String("book_stock", tank.BookStock.String()),
				slog.String("reorder_level", tank.ReorderLevel.String()))
			if cfg.Client == nil || cfg.AlertTo == "" {
				continue
			}
			payload := SendEmailPayload{
				To:      cfg.AlertTo,
				Subject: fmt.Sprintf("Low fuel: %s", tank.Name),
				Body: fmt.Sprintf("Tank %s (%s) holds %s litres, reorder level %s.",
					tank.Name, tank.FuelGrade, tank.BookStock.String(), tank.ReorderLevel.String()),
			}
			if _, err := cfg.Client.EnqueueSendEmail(ctx, payload); err != nil {
				cfg.Logger.Error("enqueue low tank alert", slog.Any("error", err))
			}
		}
		return nil
	}
}
