package pos

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("pos: not found")

// Repository provides PostgreSQL backed persistence for sales.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSale inserts a ticket and its lines in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale *Sale) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `INSERT INTO pos_sales (receipt_number, cashier_id, customer_id, tender, currency, subtotal, tax, total, sold_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
RETURNING id, created_at`,
		sale.ReceiptNumber, sale.CashierID, sale.CustomerID, sale.Tender, sale.Currency,
		sale.Subtotal, sale.Tax, sale.Total, sale.SoldAt).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	for i := range sale.Lines {
		line := &sale.Lines[i]
		line.SaleID = sale.ID
		err = tx.QueryRow(ctx, `INSERT INTO pos_sale_lines (sale_id, kind, tank_id, description, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			line.SaleID, line.Kind, line.TankID, line.Description, line.Quantity, line.UnitPrice, line.LineTotal).Scan(&line.ID)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetSale loads one ticket with its lines.
func (r *Repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	var sale Sale
	err := r.pool.QueryRow(ctx, `SELECT id, receipt_number, cashier_id, customer_id, tender, currency, subtotal, tax, total, sold_at, created_at
FROM pos_sales WHERE id = $1`, id).
		Scan(&sale.ID, &sale.ReceiptNumber, &sale.CashierID, &sale.CustomerID, &sale.Tender, &sale.Currency,
			&sale.Subtotal, &sale.Tax, &sale.Total, &sale.SoldAt, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, kind, tank_id, description, quantity, unit_price, line_total
FROM pos_sale_lines WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line SaleLine
		if err := rows.Scan(&line.ID, &line.SaleID, &line.Kind, &line.TankID, &line.Description, &line.Quantity, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, err
		}
		sale.Lines = append(sale.Lines, line)
	}
	return &sale, rows.Err()
}

// ListByDay returns tickets sold within the given calendar day, oldest
// first. Lines are not loaded.
func (r *Repository) ListByDay(ctx context.Context, day time.Time) ([]Sale, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := r.pool.Query(ctx, `SELECT id, receipt_number, cashier_id, customer_id, tender, currency, subtotal, tax, total, sold_at, created_at
FROM pos_sales WHERE sold_at >= $1 AND sold_at < $2 ORDER BY sold_at, id`, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []Sale
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.ReceiptNumber, &sale.CashierID, &sale.CustomerID, &sale.Tender, &sale.Currency,
			&sale.Subtotal, &sale.Tax, &sale.Total, &sale.SoldAt, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// SummarizeDay aggregates tickets for one calendar day.
func (r *Repository) SummarizeDay(ctx context.Context, day time.Time) (DaySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	summary := DaySummary{Day: start, CashTotal: decimal.Zero, CreditTotal: decimal.Zero, GrandTotal: decimal.Zero}
	var cash, credit string
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*),
	COALESCE(SUM(total) FILTER (WHERE tender = 'CASH'), 0)::text,
	COALESCE(SUM(total) FILTER (WHERE tender = 'CREDIT'), 0)::text
FROM pos_sales WHERE sold_at >= $1 AND sold_at < $2`, start, start.AddDate(0, 0, 1)).
		Scan(&summary.SaleCount, &cash, &credit)
	if err != nil {
		return DaySummary{}, err
	}
	if summary.CashTotal, err = decimal.NewFromString(cash); err != nil {
		return DaySummary{}, err
	}
	if summary.CreditTotal, err = decimal.NewFromString(credit); err != nil {
		return DaySummary{}, err
	}
	summary.GrandTotal = summary.CashTotal.Add(summary.CreditTotal)
	return summary, nil
}
