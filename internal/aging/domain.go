// Package aging classifies outstanding receivables and payables into
// overdue-age buckets and summarises per-bucket and grand totals.
package aging

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType selects which side of the ledger a report covers.
type ReportType string

const (
	// Receivable reports money owed to the station by customers.
	Receivable ReportType = "receivable"
	// Payable reports money the station owes to suppliers.
	Payable ReportType = "payable"
)

// Valid reports whether the report type is one of the known values.
func (t ReportType) Valid() bool {
	return t == Receivable || t == Payable
}

// BucketName identifies one of the five fixed aging partitions.
type BucketName string

const (
	BucketCurrent BucketName = "current"
	BucketDays30  BucketName = "days30"
	BucketDays60  BucketName = "days60"
	BucketDays90  BucketName = "days90"
	BucketOver90  BucketName = "over90"
)

// BucketOrder lists buckets in display and export order.
var BucketOrder = []BucketName{BucketCurrent, BucketDays30, BucketDays60, BucketDays90, BucketOver90}

// OutstandingRecord is one unpaid receivable or payable line supplied by
// the caller. Dates use the zero value when absent. Amount arrives as the
// raw wire string and is coerced during computation.
type OutstandingRecord struct {
	ID               string    `json:"id"`
	ReferenceNumber  string    `json:"reference_number"`
	CounterpartyName string    `json:"counterparty_name"`
	OriginDate       time.Time `json:"origin_date"`
	DueDate          time.Time `json:"due_date"`
	Amount           string    `json:"amount"`
	CurrencyCode     string    `json:"currency_code"`
}

// AgedRecord decorates an input record with its computed age. Negative
// DaysOverdue means the record is not yet due.
type AgedRecord struct {
	OutstandingRecord
	DaysOverdue int             `json:"days_overdue"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Report is the immutable result of one aging computation.
type Report struct {
	Type             ReportType                     `json:"type"`
	AsOf             time.Time                      `json:"as_of"`
	Buckets          map[BucketName][]AgedRecord    `json:"buckets"`
	Totals           map[BucketName]decimal.Decimal `json:"totals"`
	GrandTotal       decimal.Decimal                `json:"grand_total"`
	TotalsByCurrency map[string]decimal.Decimal     `json:"totals_by_currency"`
	Dropped          int                            `json:"dropped"`
	Warnings         []string                       `json:"warnings,omitempty"`
}

// Percentage returns the bucket's share of the grand total in percent,
// rounded to two decimals. Defined as zero when the grand total is zero.
func (r Report) Percentage(name BucketName) decimal.Decimal {
	if r.GrandTotal.IsZero() {
		return decimal.Zero
	}
	total, ok := r.Totals[name]
	if !ok {
		return decimal.Zero
	}
	return total.Mul(decimal.NewFromInt(100)).DivRound(r.GrandTotal, 2)
}

// RecordCount returns the number of classified records across all buckets.
func (r Report) RecordCount() int {
	n := 0
	for _, records := range r.Buckets {
		n += len(records)
	}
	return n
}
