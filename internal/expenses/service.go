package expenses

import (
	"context"
	"errors"
	"time"
)

// RepositoryPort defines data access methods for expenses.
type RepositoryPort interface {
	Create(ctx context.Context, input ExpenseInput) (*Expense, error)
	Get(ctx context.Context, id int64) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, from, to time.Time) ([]Expense, error)
	MonthlyTotals(ctx context.Context, year int, month time.Month) ([]CategoryTotal, error)
}

// Service handles expense entries.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Record validates and stores one expense entry.
func (s *Service) Record(ctx context.Context, input ExpenseInput) (*Expense, error) {
	if input.Category == "" {
		return nil, errors.New("expenses: category required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("expenses: amount must be positive")
	}
	if input.SpentAt.IsZero() {
		input.SpentAt = time.Now()
	}
	return s.repo.Create(ctx, input)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id int64) (*Expense, error) {
	return s.repo.Get(ctx, id)
}

// Remove deletes an entry.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns entries within [from, to).
func (s *Service) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	if to.Before(from) {
		return nil, errors.New("expenses: to precedes from")
	}
	return s.repo.List(ctx, from, to)
}

// MonthlyTotals aggregates one month's spend per category.
func (s *Service) MonthlyTotals(ctx context.Context, year int, month time.Month) ([]CategoryTotal, error) {
	if month < time.January || month > time.December {
		return nil, errors.New("expenses: invalid month")
	}
	return s.repo.MonthlyTotals(ctx, year, month)
}
