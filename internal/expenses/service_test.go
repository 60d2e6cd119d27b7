package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	entries []Expense
	nextID  int64
}

func (r *memoryRepo) Create(ctx context.Context, input ExpenseInput) (*Expense, error) {
	r.nextID++
	exp := Expense{
		ID:         r.nextID,
		Category:   input.Category,
		Amount:     input.Amount,
		Note:       input.Note,
		SpentAt:    input.SpentAt,
		RecordedBy: input.RecordedBy,
	}
	r.entries = append(r.entries, exp)
	return &exp, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Expense, error) {
	for _, exp := range r.entries {
		if exp.ID == id {
			return &exp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	for i, exp := range r.entries {
		if exp.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, from, to time.Time) ([]Expense, error) {
	var out []Expense
	for _, exp := range r.entries {
		if !exp.SpentAt.Before(from) && exp.SpentAt.Before(to) {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (r *memoryRepo) MonthlyTotals(ctx context.Context, year int, month time.Month) ([]CategoryTotal, error) {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, exp := range r.entries {
		if exp.SpentAt.Year() != year || exp.SpentAt.Month() != month {
			continue
		}
		if _, ok := totals[exp.Category]; !ok {
			order = append(order, exp.Category)
		}
		totals[exp.Category] = totals[exp.Category].Add(exp.Amount)
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		out = append(out, CategoryTotal{Category: category, Total: totals[category]})
	}
	return out, nil
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	_, err := svc.Record(ctx, ExpenseInput{Amount: decimal.NewFromInt(100)})
	require.Error(t, err, "category required")

	_, err = svc.Record(ctx, ExpenseInput{Category: "Utilities", Amount: decimal.Zero})
	require.Error(t, err, "amount must be positive")

	exp, err := svc.Record(ctx, ExpenseInput{Category: "Utilities", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.False(t, exp.SpentAt.IsZero(), "spent_at defaults to now")
}

func TestGetReturnsEntry(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	exp, err := svc.Record(ctx, ExpenseInput{Category: "Repairs", Amount: decimal.NewFromInt(3500), SpentAt: day(3)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, "Repairs", got.Category)

	_, err = svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByDate(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	for d, category := range map[int]string{5: "Utilities", 12: "Wages", 28: "Repairs"} {
		_, err := svc.Record(ctx, ExpenseInput{Category: category, Amount: decimal.NewFromInt(1000), SpentAt: day(d)})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, day(10), day(20))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Wages", entries[0].Category)

	_, err = svc.List(ctx, day(20), day(10))
	require.Error(t, err, "inverted range")
}

func TestMonthlyTotalsGroupByCategory(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	amounts := []struct {
		category string
		amount   string
		spentAt  time.Time
	}{
		{"Wages", "45000", day(1)},
		{"Wages", "5000", day(15)},
		{"Utilities", "8200.50", day(9)},
		{"Wages", "1000", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, entry := range amounts {
		_, err := svc.Record(ctx, ExpenseInput{Category: entry.category, Amount: decimal.RequireFromString(entry.amount), SpentAt: entry.spentAt})
		require.NoError(t, err)
	}

	totals, err := svc.MonthlyTotals(ctx, 2026, time.March)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byCategory := make(map[string]string)
	for _, total := range totals {
		byCategory[total.Category] = total.Total.String()
	}
	require.Equal(t, "50000", byCategory["Wages"])
	require.Equal(t, "8200.5", byCategory["Utilities"])
}
