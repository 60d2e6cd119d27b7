package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("expenses: not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an expense entry.
func (r *Repository) Create(ctx context.Context, input ExpenseInput) (*Expense, error) {
	var exp Expense
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (category, amount, note, spent_at, recorded_by, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, category, amount, note, spent_at, recorded_by, created_at`,
		input.Category, input.Amount, input.Note, input.SpentAt, input.RecordedBy).
		Scan(&exp.ID, &exp.Category, &exp.Amount, &exp.Note, &exp.SpentAt, &exp.RecordedBy, &exp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// Get loads one entry.
func (r *Repository) Get(ctx context.Context, id int64) (*Expense, error) {
	var exp Expense
	err := r.pool.QueryRow(ctx, `SELECT id, category, amount, note, spent_at, recorded_by, created_at FROM expenses WHERE id = $1`, id).
		Scan(&exp.ID, &exp.Category, &exp.Amount, &exp.Note, &exp.SpentAt, &exp.RecordedBy, &exp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// Delete removes an entry.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns entries within [from, to), newest first.
func (r *Repository) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, category, amount, note, spent_at, recorded_by, created_at
FROM expenses WHERE spent_at >= $1 AND spent_at < $2 ORDER BY spent_at DESC, id DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var exp Expense
		if err := rows.Scan(&exp.ID, &exp.Category, &exp.Amount, &exp.Note, &exp.SpentAt, &exp.RecordedBy, &exp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

// MonthlyTotals aggregates spend per category for one calendar month.
func (r *Repository) MonthlyTotals(ctx context.Context, year int, month time.Month) ([]CategoryTotal, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, `SELECT category, SUM(amount)
FROM expenses WHERE spent_at >= $1 AND spent_at < $2
GROUP BY category ORDER BY SUM(amount) DESC`, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryTotal
	for rows.Next() {
		var total CategoryTotal
		if err := rows.Scan(&total.Category, &total.Total); err != nil {
			return nil, err
		}
		out = append(out, total)
	}
	return out, rows.Err()
}
