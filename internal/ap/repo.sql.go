package ap

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("ap: not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateBill inserts a posted bill.
func (r *Repository) CreateBill(ctx context.Context, input BillInput) (*Bill, error) {
	var bill Bill
	err := r.pool.QueryRow(ctx, `INSERT INTO ap_bills (number, supplier_id, delivery_id, currency, total, status, issued_at, due_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
RETURNING id, number, supplier_id, delivery_id, currency, total, status, issued_at, due_at, created_at, updated_at`,
		input.Number, input.SupplierID, input.DeliveryID, input.Currency, input.Total, StatusPosted, input.IssuedAt, input.DueAt).
		Scan(&bill.ID, &bill.Number, &bill.SupplierID, &bill.DeliveryID, &bill.Currency, &bill.Total, &bill.Status, &bill.IssuedAt, &bill.DueAt, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// GetBill loads one bill.
func (r *Repository) GetBill(ctx context.Context, id int64) (*Bill, error) {
	var bill Bill
	err := r.pool.QueryRow(ctx, `SELECT id, number, supplier_id, delivery_id, currency, total, status, issued_at, due_at, created_at, updated_at FROM ap_bills WHERE id = $1`, id).
		Scan(&bill.ID, &bill.Number, &bill.SupplierID, &bill.DeliveryID, &bill.Currency, &bill.Total, &bill.Status, &bill.IssuedAt, &bill.DueAt, &bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// ListBills returns all bills newest first.
func (r *Repository) ListBills(ctx context.Context) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, supplier_id, delivery_id, currency, total, status, issued_at, due_at, created_at, updated_at FROM ap_bills ORDER BY issued_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bills []Bill
	for rows.Next() {
		var bill Bill
		if err := rows.Scan(&bill.ID, &bill.Number, &bill.SupplierID, &bill.DeliveryID, &bill.Currency, &bill.Total, &bill.Status, &bill.IssuedAt, &bill.DueAt, &bill.CreatedAt, &bill.UpdatedAt); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// ListOutstanding returns posted bills with their unpaid remainder.
func (r *Repository) ListOutstanding(ctx context.Context) ([]OutstandingRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.id, b.number, s.name, b.currency,
	b.total - COALESCE(SUM(p.amount), 0) AS outstanding, b.issued_at, b.due_at
FROM ap_bills b
JOIN suppliers s ON s.id = b.supplier_id
LEFT JOIN ap_payments p ON p.bill_id = b.id
WHERE b.status = 'POSTED'
GROUP BY b.id, s.name
HAVING b.total - COALESCE(SUM(p.amount), 0) > 0
ORDER BY b.due_at, b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OutstandingRow
	for rows.Next() {
		var row OutstandingRow
		if err := rows.Scan(&row.BillID, &row.Number, &row.SupplierName, &row.Currency, &row.Outstanding, &row.IssuedAt, &row.DueAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertPayment(ctx context.Context, payment PaymentInput) (int64, error)
	AllocatedAmount(ctx context.Context, billID int64) (string, error)
	UpdateStatus(ctx context.Context, id int64, status BillStatus) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (t *txRepo) InsertPayment(ctx context.Context, payment PaymentInput) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO ap_payments (number, bill_id, amount, paid_at, method, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id`,
		payment.Number, payment.BillID, payment.Amount, payment.PaidAt, payment.Method, payment.Note).Scan(&id)
	return id, err
}

func (t *txRepo) AllocatedAmount(ctx context.Context, billID int64) (string, error) {
	var total string
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::text FROM ap_payments WHERE bill_id = $1`, billID).Scan(&total)
	return total, err
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status BillStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE ap_bills SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}
