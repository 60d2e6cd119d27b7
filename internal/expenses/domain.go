package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one operating cost entry.
type Expense struct {
	ID         int64
	Category   string
	Amount     decimal.Decimal
	Note       string
	SpentAt    time.Time
	RecordedBy string
	CreatedAt  time.Time
}

// ExpenseInput carries create fields.
type ExpenseInput struct {
	Category   string
	Amount     decimal.Decimal
	Note       string
	SpentAt    time.Time
	RecordedBy string
}

// CategoryTotal is one category's spend over a month.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
