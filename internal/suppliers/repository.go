package suppliers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forecourt-hq/forecourt/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a supplier.
func (r *Repository) Create(ctx context.Context, input SupplierInput) (*Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, contact_name, phone, address, payment_terms, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
RETURNING id, name, contact_name, phone, address, payment_terms, is_active, created_at, updated_at`,
		input.Name, input.ContactName, input.Phone, input.Address, input.PaymentTerms).
		Scan(&s.ID, &s.Name, &s.ContactName, &s.Phone, &s.Address, &s.PaymentTerms, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update modifies a supplier.
func (r *Repository) Update(ctx context.Context, id int64, input SupplierInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET name = $2, contact_name = $3, phone = $4, address = $5, payment_terms = $6, updated_at = NOW() WHERE id = $1`,
		id, input.Name, input.ContactName, input.Phone, input.Address, input.PaymentTerms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Get loads one supplier.
func (r *Repository) Get(ctx context.Context, id int64) (*Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, contact_name, phone, address, payment_terms, is_active, created_at, updated_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.ContactName, &s.Phone, &s.Address, &s.PaymentTerms, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns a page of active suppliers ordered by name.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]Supplier, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE is_active`).Scan(&total); err != nil {
		return nil, shared.Pagination{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, contact_name, phone, address, payment_terms, is_active, created_at, updated_at FROM suppliers WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactName, &s.Phone, &s.Address, &s.PaymentTerms, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, s)
	}
	return out, shared.NewPagination(page, perPage, total), rows.Err()
}

// Deactivate soft-deletes a supplier.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
