package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-hq/forecourt/internal/aging"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/pos"
)

var reportNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	records []aging.OutstandingRecord
	calls   int
}

func (s *stubSource) Outstanding(ctx context.Context) ([]aging.OutstandingRecord, error) {
	s.calls++
	return s.records, nil
}

type stubSales struct{ summary pos.DaySummary }

func (s stubSales) SummarizeDay(ctx context.Context, day time.Time) (pos.DaySummary, error) {
	return s.summary, nil
}

type stubTanks struct{ low []inventory.TankLevel }

func (s stubTanks) LowTanks(ctx context.Context) ([]inventory.TankLevel, error) {
	return s.low, nil
}

type countingObserver struct{ byType map[string]int }

func (o *countingObserver) ObserveAging(reportType string) {
	if o.byType == nil {
		o.byType = make(map[string]int)
	}
	o.byType[reportType]++
}

func record(ref string, daysOverdue int, amount string) aging.OutstandingRecord {
	return aging.OutstandingRecord{
		ID:              ref,
		ReferenceNumber: ref,
		DueDate:         reportNow.AddDate(0, 0, -daysOverdue),
		Amount:          amount,
		CurrencyCode:    "PKR",
	}
}

func testReportService(receivables, payables *stubSource) *Service {
	svc := NewService(receivables, payables, stubSales{}, stubTanks{}, nil, nil)
	svc.WithNow(func() time.Time { return reportNow })
	return svc
}

func TestAgingComputesFromSource(t *testing.T) {
	receivables := &stubSource{records: []aging.OutstandingRecord{
		record("INV-1", 0, "100"),
		record("INV-2", 45, "200"),
	}}
	svc := testReportService(receivables, &stubSource{})

	report, err := svc.Aging(context.Background(), aging.Receivable, time.Time{})
	require.NoError(t, err)
	require.Equal(t, aging.Receivable, report.Type)
	require.Len(t, report.Buckets[aging.BucketCurrent], 1)
	require.Len(t, report.Buckets[aging.BucketDays60], 1)
	require.True(t, report.GrandTotal.Equal(decimal.NewFromInt(300)))
}

func TestAgingRejectsUnknownType(t *testing.T) {
	svc := testReportService(&stubSource{}, &stubSource{})
	_, err := svc.Aging(context.Background(), aging.ReportType("weekly"), time.Time{})
	require.Error(t, err)
}

func TestAgingSelectsPayableSource(t *testing.T) {
	receivables := &stubSource{}
	payables := &stubSource{records: []aging.OutstandingRecord{record("AP-1", 100, "500")}}
	observer := &countingObserver{}
	svc := NewService(receivables, payables, nil, nil, nil, observer)
	svc.WithNow(func() time.Time { return reportNow })

	report, err := svc.Aging(context.Background(), aging.Payable, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 0, receivables.calls)
	require.Equal(t, 1, payables.calls)
	require.Len(t, report.Buckets[aging.BucketOver90], 1)
	require.Equal(t, 1, observer.byType["payable"])
}

func TestWarmupComputesBothSides(t *testing.T) {
	receivables := &stubSource{}
	payables := &stubSource{}
	svc := testReportService(receivables, payables)

	require.NoError(t, svc.Warmup(context.Background()))
	require.Equal(t, 1, receivables.calls)
	require.Equal(t, 1, payables.calls)
}

func TestLoadDashboard(t *testing.T) {
	receivables := &stubSource{records: []aging.OutstandingRecord{
		record("INV-1", 10, "600"),
		record("INV-2", 70, "400"),
	}}
	payables := &stubSource{records: []aging.OutstandingRecord{record("AP-1", 5, "250")}}
	sales := stubSales{summary: pos.DaySummary{SaleCount: 12, GrandTotal: decimal.NewFromInt(90000)}}
	tanks := stubTanks{low: []inventory.TankLevel{{TankID: 1, Name: "Tank A", Low: true}}}

	svc := NewService(receivables, payables, sales, tanks, nil, nil)
	svc.WithNow(func() time.Time { return reportNow })

	dashboard, err := svc.LoadDashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, reportNow, dashboard.AsOf)
	require.True(t, dashboard.Receivables.GrandTotal.Equal(decimal.NewFromInt(1000)))
	require.True(t, dashboard.Payables.GrandTotal.Equal(decimal.NewFromInt(250)))
	require.Equal(t, 12, dashboard.Sales.SaleCount)
	require.Len(t, dashboard.LowTanks, 1)

	require.Len(t, dashboard.Receivables.Buckets, 5)
	days30 := dashboard.Receivables.Buckets[1]
	require.Equal(t, aging.BucketDays30, days30.Bucket)
	require.Equal(t, 1, days30.Count)
	require.Equal(t, "60", days30.Percentage.String())
}

func TestWriteAgingCSVOrdersBuckets(t *testing.T) {
	records := []aging.OutstandingRecord{
		record("OVER", 120, "900"),
		record("CUR", -3, "100"),
		record("MID", 40, "400"),
	}
	report, err := aging.Compute(records, aging.Receivable, reportNow)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteAgingCSV(&buf, report))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "Reference,Counterparty,Origin Date,Due Date,Amount,Currency,Days Overdue,Status", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "CUR,"))
	require.True(t, strings.HasPrefix(lines[2], "MID,"))
	require.True(t, strings.HasPrefix(lines[3], "OVER,"))
	require.Contains(t, lines[1], "Current")
	require.Contains(t, lines[2], "31-60 Days")
	require.Contains(t, lines[3], "90+ Days")
}
