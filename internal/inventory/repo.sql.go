package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("inventory: not found")

// ErrInsufficientStock indicates a depletion larger than book stock.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

const tankColumns = `id, name, fuel_grade, capacity_litres, reorder_level, book_stock, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for tanks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTank(row pgx.Row) (*Tank, error) {
	var tank Tank
	err := row.Scan(&tank.ID, &tank.Name, &tank.FuelGrade, &tank.CapacityLitres, &tank.ReorderLevel,
		&tank.BookStock, &tank.IsActive, &tank.CreatedAt, &tank.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tank, nil
}

// CreateTank inserts a tank with zero book stock.
func (r *Repository) CreateTank(ctx context.Context, input TankInput) (*Tank, error) {
	return scanTank(r.pool.QueryRow(ctx, `INSERT INTO tanks (name, fuel_grade, capacity_litres, reorder_level, book_stock, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, TRUE, NOW(), NOW())
RETURNING `+tankColumns,
		input.Name, input.FuelGrade, input.CapacityLitres, input.ReorderLevel))
}

// GetTank loads one tank.
func (r *Repository) GetTank(ctx context.Context, id int64) (*Tank, error) {
	return scanTank(r.pool.QueryRow(ctx, `SELECT `+tankColumns+` FROM tanks WHERE id = $1`, id))
}

// UpdateTank rewrites the editable fields.
func (r *Repository) UpdateTank(ctx context.Context, id int64, input TankInput) (*Tank, error) {
	return scanTank(r.pool.QueryRow(ctx, `UPDATE tanks SET name = $2, fuel_grade = $3, capacity_litres = $4, reorder_level = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+tankColumns,
		id, input.Name, input.FuelGrade, input.CapacityLitres, input.ReorderLevel))
}

// ListTanks returns all active tanks.
func (r *Repository) ListTanks(ctx context.Context) ([]Tank, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tankColumns+` FROM tanks WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tanks []Tank
	for rows.Next() {
		tank, err := scanTank(rows)
		if err != nil {
			return nil, err
		}
		tanks = append(tanks, *tank)
	}
	return tanks, rows.Err()
}

// AdjustStock moves book stock by delta and returns the new balance.
// Negative balances are rejected inside the statement.
func (r *Repository) AdjustStock(ctx context.Context, tankID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, `UPDATE tanks SET book_stock = book_stock + $2, updated_at = NOW()
WHERE id = $1 AND book_stock + $2 >= 0 RETURNING book_stock`, tankID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetTank(ctx, tankID); getErr != nil {
				return decimal.Zero, getErr
			}
			return decimal.Zero, ErrInsufficientStock
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// CreateDelivery inserts the drop and increases book stock atomically.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *Delivery) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `INSERT INTO fuel_deliveries (tank_id, supplier_id, litres, unit_cost, total_cost, bill_id, delivered_at, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), $7, NOW()) RETURNING id, created_at`,
		delivery.TankID, delivery.SupplierID, delivery.Litres, delivery.UnitCost, delivery.TotalCost, delivery.BillID, delivery.DeliveredAt).
		Scan(&delivery.ID, &delivery.CreatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE tanks SET book_stock = book_stock + $2, updated_at = NOW() WHERE id = $1`, delivery.TankID, delivery.Litres)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// SetDeliveryBill links a raised payable back to the delivery row.
func (r *Repository) SetDeliveryBill(ctx context.Context, deliveryID, billID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE fuel_deliveries SET bill_id = $2 WHERE id = $1`, deliveryID, billID)
	return err
}

// ListDeliveries returns drops for one tank, newest first.
func (r *Repository) ListDeliveries(ctx context.Context, tankID int64) ([]Delivery, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tank_id, supplier_id, litres, unit_cost, total_cost, COALESCE(bill_id, 0), delivered_at, created_at
FROM fuel_deliveries WHERE tank_id = $1 ORDER BY delivered_at DESC, id DESC`, tankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.TankID, &d.SupplierID, &d.Litres, &d.UnitCost, &d.TotalCost, &d.BillID, &d.DeliveredAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertDipReading records a stick measurement.
func (r *Repository) InsertDipReading(ctx context.Context, reading *DipReading) error {
	return r.pool.QueryRow(ctx, `INSERT INTO dip_readings (tank_id, observed_litres, book_litres, variance, taken_by, taken_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		reading.TankID, reading.ObservedLitres, reading.BookLitres, reading.Variance, reading.TakenBy, reading.TakenAt).
		Scan(&reading.ID)
}

// ListDipReadings returns measurements for one tank, newest first.
func (r *Repository) ListDipReadings(ctx context.Context, tankID int64) ([]DipReading, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tank_id, observed_litres, book_litres, variance, taken_by, taken_at
FROM dip_readings WHERE tank_id = $1 ORDER BY taken_at DESC, id DESC`, tankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DipReading
	for rows.Next() {
		var reading DipReading
		if err := rows.Scan(&reading.ID, &reading.TankID, &reading.ObservedLitres, &reading.BookLitres, &reading.Variance, &reading.TakenBy, &reading.TakenAt); err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, rows.Err()
}
