package ar

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("ar: not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateInvoice inserts a posted invoice.
func (r *Repository) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `INSERT INTO ar_invoices (number, customer_id, sale_id, currency, total, status, issued_at, due_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
RETURNING id, number, customer_id, sale_id, currency, total, status, issued_at, due_at, created_at, updated_at`,
		input.Number, input.CustomerID, input.SaleID, input.Currency, input.Total, StatusPosted, input.IssuedAt, input.DueAt).
		Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.SaleID, &inv.Currency, &inv.Total, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoice loads one invoice.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `SELECT id, number, customer_id, sale_id, currency, total, status, issued_at, due_at, created_at, updated_at FROM ar_invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.SaleID, &inv.Currency, &inv.Total, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns all invoices newest first.
func (r *Repository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, customer_id, sale_id, currency, total, status, issued_at, due_at, created_at, updated_at FROM ar_invoices ORDER BY issued_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.SaleID, &inv.Currency, &inv.Total, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ListOutstanding returns posted invoices with their unpaid remainder,
// ordered by due date so bucket contents stay stable between runs.
func (r *Repository) ListOutstanding(ctx context.Context) ([]OutstandingRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.number, c.name, i.currency,
	i.total - COALESCE(SUM(p.amount), 0) AS outstanding, i.issued_at, i.due_at
FROM ar_invoices i
JOIN customers c ON c.id = i.customer_id
LEFT JOIN ar_payments p ON p.invoice_id = i.id
WHERE i.status = 'POSTED'
GROUP BY i.id, c.name
HAVING i.total - COALESCE(SUM(p.amount), 0) > 0
ORDER BY i.due_at, i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OutstandingRow
	for rows.Next() {
		var row OutstandingRow
		if err := rows.Scan(&row.InvoiceID, &row.Number, &row.CustomerName, &row.Currency, &row.Outstanding, &row.IssuedAt, &row.DueAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertPayment(ctx context.Context, payment PaymentInput) (int64, error)
	AllocatedAmount(ctx context.Context, invoiceID int64) (string, error)
	UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error
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
	err := t.tx.QueryRow(ctx, `INSERT INTO ar_payments (number, invoice_id, amount, paid_at, method, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id`,
		payment.Number, payment.InvoiceID, payment.Amount, payment.PaidAt, payment.Method, payment.Note).Scan(&id)
	return id, err
}

func (t *txRepo) AllocatedAmount(ctx context.Context, invoiceID int64) (string, error) {
	var total string
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::text FROM ar_payments WHERE invoice_id = $1`, invoiceID).Scan(&total)
	return total, err
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE ar_invoices SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}
