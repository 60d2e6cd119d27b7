package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tender enumerates how a sale was settled.
type Tender string

const (
	TenderCash   Tender = "CASH"
	TenderCredit Tender = "CREDIT"
)

// Valid reports whether t is a known tender.
func (t Tender) Valid() bool {
	return t == TenderCash || t == TenderCredit
}

// LineKind distinguishes fuel dispensed at a pump from shop merchandise.
type LineKind string

const (
	KindFuel LineKind = "FUEL"
	KindShop LineKind = "SHOP"
)

// Sale is one till ticket.
type Sale struct {
	ID            int64
	ReceiptNumber string
	CashierID     string
	CustomerID    int64
	Tender        Tender
	Currency      string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	SoldAt        time.Time
	Lines         []SaleLine
	CreatedAt     time.Time
}

// SaleLine is one priced row on a ticket. Quantity is litres for fuel
// lines, units for shop lines.
type SaleLine struct {
	ID          int64
	SaleID      int64
	Kind        LineKind
	TankID      int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// LineInput carries one requested line.
type LineInput struct {
	Kind        LineKind
	TankID      int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// SaleInput carries a requested ticket.
type SaleInput struct {
	CashierID  string
	CustomerID int64
	Tender     Tender
	SoldAt     time.Time
	Lines      []LineInput
}

// DaySummary aggregates one day of sales for the dashboard.
type DaySummary struct {
	Day         time.Time       `json:"day"`
	SaleCount   int             `json:"sale_count"`
	CashTotal   decimal.Decimal `json:"cash_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}
