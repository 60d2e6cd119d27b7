package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/forecourt-hq/forecourt/internal/aging"
)

// WriteAgingCSV serialises an aging report as one row per record in
// fixed bucket order.
func WriteAgingCSV(w io.Writer, report aging.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Reference", "Counterparty", "Origin Date", "Due Date", "Amount", "Currency", "Days Overdue", "Status"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, bucket := range aging.BucketOrder {
		for _, record := range report.Buckets[bucket] {
			row := []string{
				record.ReferenceNumber,
				record.CounterpartyName,
				formatDate(record.OriginDate),
				formatDate(record.DueDate),
				record.Outstanding.StringFixed(2),
				record.CurrencyCode,
				strconv.Itoa(record.DaysOverdue),
				aging.StatusLabel(record.DaysOverdue),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
