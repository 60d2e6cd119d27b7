package ap

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus enumerates payable bill statuses.
type BillStatus string

const (
	StatusDraft  BillStatus = "DRAFT"
	StatusPosted BillStatus = "POSTED"
	StatusPaid   BillStatus = "PAID"
	StatusVoid   BillStatus = "VOID"
)

// Bill models a supplier payable, usually raised from a fuel delivery.
type Bill struct {
	ID         int64
	Number     string
	SupplierID int64
	DeliveryID int64
	Currency   string
	Total      decimal.Decimal
	Status     BillStatus
	IssuedAt   time.Time
	DueAt      time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment models a disbursement against a bill.
type Payment struct {
	ID        int64
	Number    string
	BillID    int64
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Note      string
	CreatedAt time.Time
}

// BillInput for creating bills.
type BillInput struct {
	SupplierID int64
	DeliveryID int64
	Number     string
	Currency   string
	Total      decimal.Decimal
	IssuedAt   time.Time
	DueAt      time.Time
}

// PaymentInput for recording payments.
type PaymentInput struct {
	BillID int64
	Number string
	Amount decimal.Decimal
	PaidAt time.Time
	Method string
	Note   string
}

// OutstandingRow is one unpaid bill with its remaining balance and the
// supplier display name, feeding the aging report.
type OutstandingRow struct {
	BillID       int64
	Number       string
	SupplierName string
	Currency     string
	Outstanding  decimal.Decimal
	IssuedAt     time.Time
	DueAt        time.Time
}
