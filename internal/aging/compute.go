package aging

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// BucketFor maps a whole-day overdue age onto its partition. The rules are
// evaluated in fixed order and cover the full integer line.
func BucketFor(daysOverdue int) BucketName {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return BucketDays30
	case daysOverdue <= 60:
		return BucketDays60
	case daysOverdue <= 90:
		return BucketDays90
	default:
		return BucketOver90
	}
}

// StatusLabel returns the human label shown for a record's age in exports.
func StatusLabel(daysOverdue int) string {
	switch BucketFor(daysOverdue) {
	case BucketCurrent:
		return "Current"
	case BucketDays30:
		return "1-30 Days"
	case BucketDays60:
		return "31-60 Days"
	case BucketDays90:
		return "61-90 Days"
	default:
		return "90+ Days"
	}
}

// DaysOverdue computes whole days elapsed between the reference date and
// now, floored. Not-yet-due records yield negative values.
func DaysOverdue(now, reference time.Time) int {
	return int(math.Floor(now.Sub(reference).Hours() / 24))
}

// Compute partitions the supplied outstanding records into aging buckets
// relative to now and sums per-bucket and grand totals.
//
// The due date is the reference date for age computation; when absent the
// origin date is used, and records carrying neither are dropped and
// counted in Report.Dropped. Unparseable amounts are coerced to zero and
// surfaced in Report.Warnings so one bad row never aborts the report.
// Inputs are never mutated and relative order is preserved inside each
// bucket.
func Compute(records []OutstandingRecord, reportType ReportType, now time.Time) (Report, error) {
	if !reportType.Valid() {
		return Report{}, fmt.Errorf("aging: unknown report type %q", reportType)
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	report := Report{
		Type:             reportType,
		AsOf:             now,
		Buckets:          make(map[BucketName][]AgedRecord, len(BucketOrder)),
		Totals:           make(map[BucketName]decimal.Decimal, len(BucketOrder)),
		TotalsByCurrency: make(map[string]decimal.Decimal),
		GrandTotal:       decimal.Zero,
	}
	for _, name := range BucketOrder {
		report.Buckets[name] = nil
		report.Totals[name] = decimal.Zero
	}

	for _, record := range records {
		reference := record.DueDate
		if reference.IsZero() {
			reference = record.OriginDate
		}
		if reference.IsZero() {
			report.Dropped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("record %s has no due or origin date", record.ID))
			continue
		}

		amount, warn := parseAmount(record)
		if warn != "" {
			report.Warnings = append(report.Warnings, warn)
		}

		days := DaysOverdue(now, reference)
		name := BucketFor(days)
		report.Buckets[name] = append(report.Buckets[name], AgedRecord{
			OutstandingRecord: record,
			DaysOverdue:       days,
			Outstanding:       amount,
		})
		report.Totals[name] = report.Totals[name].Add(amount)

		code := NormalizeCurrency(record.CurrencyCode)
		report.TotalsByCurrency[code] = report.TotalsByCurrency[code].Add(amount)
	}

	for _, name := range BucketOrder {
		report.GrandTotal = report.GrandTotal.Add(report.Totals[name])
	}
	return report, nil
}

func parseAmount(record OutstandingRecord) (decimal.Decimal, string) {
	raw := strings.TrimSpace(record.Amount)
	if raw == "" {
		return decimal.Zero, fmt.Sprintf("record %s has an empty amount, treated as 0", record.ID)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("record %s amount %q is not numeric, treated as 0", record.ID, record.Amount)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Sprintf("record %s amount %s is negative, treated as 0", record.ID, amount)
	}
	return amount, ""
}

// NormalizeCurrency uppercases and validates an ISO-like currency tag,
// keeping the raw value when it is not a recognised unit.
func NormalizeCurrency(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}
	if unit, err := currency.ParseISO(trimmed); err == nil {
		return unit.String()
	}
	return strings.ToUpper(trimmed)
}
