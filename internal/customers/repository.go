package customers

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

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, address, credit_terms, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
RETURNING id, name, phone, address, credit_terms, is_active, created_at, updated_at`,
		input.Name, input.Phone, input.Address, input.CreditTerms).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreditTerms, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update modifies a customer.
func (r *Repository) Update(ctx context.Context, id int64, input CustomerInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET name = $2, phone = $3, address = $4, credit_terms = $5, updated_at = NOW() WHERE id = $1`,
		id, input.Name, input.Phone, input.Address, input.CreditTerms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Get loads one customer.
func (r *Repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, address, credit_terms, is_active, created_at, updated_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreditTerms, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns a page of active customers ordered by name.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]Customer, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&total); err != nil {
		return nil, shared.Pagination{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, address, credit_terms, is_active, created_at, updated_at FROM customers WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreditTerms, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, c)
	}
	return out, shared.NewPagination(page, perPage, total), rows.Err()
}

// Deactivate soft-deletes a customer.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
