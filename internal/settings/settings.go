// Package settings holds the per-station configuration row, loaded into an
// explicit struct and passed to services instead of ad-hoc key-value access.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Settings is the station-wide configuration.
type Settings struct {
	StationName    string          `json:"station_name"`
	CurrencyCode   string          `json:"currency_code"`
	VATRate        decimal.Decimal `json:"vat_rate"` // fraction, e.g. 0.17
	LowStockAlerts bool            `json:"low_stock_alerts"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Defaults returns the settings used before the row is first saved.
func Defaults() Settings {
	return Settings{
		StationName:    "Forecourt Station",
		CurrencyCode:   "PKR",
		VATRate:        decimal.Zero,
		LowStockAlerts: true,
	}
}

// Repository loads and stores the single settings row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load reads the settings row, falling back to defaults when absent.
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT station_name, currency_code, vat_rate, low_stock_alerts, updated_at FROM station_settings WHERE id = 1`).
		Scan(&s.StationName, &s.CurrencyCode, &s.VATRate, &s.LowStockAlerts, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return s, nil
}

// Save upserts the settings row.
func (r *Repository) Save(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO station_settings (id, station_name, currency_code, vat_rate, low_stock_alerts, updated_at)
VALUES (1, $1, $2, $3, $4, NOW())
ON CONFLICT (id) DO UPDATE SET station_name = EXCLUDED.station_name, currency_code = EXCLUDED.currency_code,
	vat_rate = EXCLUDED.vat_rate, low_stock_alerts = EXCLUDED.low_stock_alerts, updated_at = NOW()`,
		s.StationName, s.CurrencyCode, s.VATRate, s.LowStockAlerts)
	return err
}
