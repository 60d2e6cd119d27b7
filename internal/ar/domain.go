package ar

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates receivable invoice statuses.
type InvoiceStatus string

const (
	StatusDraft  InvoiceStatus = "DRAFT"
	StatusPosted InvoiceStatus = "POSTED"
	StatusPaid   InvoiceStatus = "PAID"
	StatusVoid   InvoiceStatus = "VOID"
)

// Invoice models a credit-sale receivable.
type Invoice struct {
	ID         int64
	Number     string
	CustomerID int64
	SaleID     int64
	Currency   string
	Total      decimal.Decimal
	Status     InvoiceStatus
	IssuedAt   time.Time
	DueAt      time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment models a receipt against an invoice.
type Payment struct {
	ID        int64
	Number    string
	InvoiceID int64
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Note      string
	CreatedAt time.Time
}

// InvoiceInput for creating invoices.
type InvoiceInput struct {
	CustomerID int64
	SaleID     int64
	Number     string
	Currency   string
	Total      decimal.Decimal
	IssuedAt   time.Time
	DueAt      time.Time
}

// PaymentInput for recording payments.
type PaymentInput struct {
	InvoiceID int64
	Number    string
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Note      string
}

// OutstandingRow is one unpaid invoice with its remaining balance and the
// customer display name, feeding the aging report.
type OutstandingRow struct {
	InvoiceID    int64
	Number       string
	CustomerName string
	Currency     string
	Outstanding  decimal.Decimal
	IssuedAt     time.Time
	DueAt        time.Time
}
