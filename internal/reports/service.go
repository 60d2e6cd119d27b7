package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/forecourt-hq/forecourt/internal/aging"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/pos"
)

// OutstandingSource supplies unpaid ledger lines for one side of the
// ledger. The AR and AP services both satisfy it.
type OutstandingSource interface {
	Outstanding(ctx context.Context) ([]aging.OutstandingRecord, error)
}

// SalesSummarizer supplies the day's till aggregate for the dashboard.
type SalesSummarizer interface {
	SummarizeDay(ctx context.Context, day time.Time) (pos.DaySummary, error)
}

// TankWatcher supplies tanks at or under their reorder level.
type TankWatcher interface {
	LowTanks(ctx context.Context) ([]inventory.TankLevel, error)
}

// Observer counts report computations. Satisfied by the observability
// metrics set; nil disables counting.
type Observer interface {
	ObserveAging(reportType string)
}

// Service computes and caches back-office reports.
type Service struct {
	receivables OutstandingSource
	payables    OutstandingSource
	sales       SalesSummarizer
	tanks       TankWatcher
	cache       *Cache
	observer    Observer
	now         func() time.Time
}

// NewService builds Service instance.
func NewService(receivables, payables OutstandingSource, sales SalesSummarizer, tanks TankWatcher, cache *Cache, observer Observer) *Service {
	return &Service{
		receivables: receivables,
		payables:    payables,
		sales:       sales,
		tanks:       tanks,
		cache:       cache,
		observer:    observer,
		now:         time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Aging returns the aged report for one ledger side, served from cache
// when the version matches.
func (s *Service) Aging(ctx context.Context, reportType aging.ReportType, asOf time.Time) (aging.Report, error) {
	if !reportType.Valid() {
		return aging.Report{}, fmt.Errorf("reports: unknown report type %q", reportType)
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	key, err := s.cache.BuildKey(ctx, keyAging(string(reportType), asOf))
	if err != nil {
		return aging.Report{}, err
	}
	var report aging.Report
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		return s.computeAging(ctx, reportType, asOf)
	})
	if err != nil {
		return aging.Report{}, err
	}
	return report, nil
}

func (s *Service) computeAging(ctx context.Context, reportType aging.ReportType, asOf time.Time) (aging.Report, error) {
	source := s.receivables
	if reportType == aging.Payable {
		source = s.payables
	}
	records, err := source.Outstanding(ctx)
	if err != nil {
		return aging.Report{}, err
	}
	report, err := aging.Compute(records, reportType, asOf)
	if err != nil {
		return aging.Report{}, err
	}
	if s.observer != nil {
		s.observer.ObserveAging(string(reportType))
	}
	return report, nil
}

// Warmup recomputes and caches both agings. Run by the nightly job.
func (s *Service) Warmup(ctx context.Context) error {
	now := s.now()
	for _, reportType := range []aging.ReportType{aging.Receivable, aging.Payable} {
		if _, err := s.Aging(ctx, reportType, now); err != nil {
			return err
		}
	}
	return nil
}

// BucketSummary is the condensed bucket line on the dashboard.
type BucketSummary struct {
	Bucket     aging.BucketName `json:"bucket"`
	Total      decimal.Decimal  `json:"total"`
	Percentage decimal.Decimal  `json:"percentage"`
	Count      int              `json:"count"`
}

// AgingSummary condenses one aging report for the dashboard.
type AgingSummary struct {
	Type       aging.ReportType `json:"type"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
	Buckets    []BucketSummary  `json:"buckets"`
}

func summarize(report aging.Report) AgingSummary {
	summary := AgingSummary{Type: report.Type, GrandTotal: report.GrandTotal}
	for _, name := range aging.BucketOrder {
		summary.Buckets = append(summary.Buckets, BucketSummary{
			Bucket:     name,
			Total:      report.Totals[name],
			Percentage: report.Percentage(name),
			Count:      len(report.Buckets[name]),
		})
	}
	return summary
}

// Dashboard is the combined back-office landing payload.
type Dashboard struct {
	AsOf        time.Time             `json:"as_of"`
	Receivables AgingSummary          `json:"receivables"`
	Payables    AgingSummary          `json:"payables"`
	Sales       pos.DaySummary        `json:"sales"`
	LowTanks    []inventory.TankLevel `json:"low_tanks"`
}

// LoadDashboard assembles the landing payload, loading its four panels
// concurrently.
func (s *Service) LoadDashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	dashboard := Dashboard{AsOf: now}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		report, err := s.Aging(groupCtx, aging.Receivable, now)
		if err != nil {
			return err
		}
		dashboard.Receivables = summarize(report)
		return nil
	})
	group.Go(func() error {
		report, err := s.Aging(groupCtx, aging.Payable, now)
		if err != nil {
			return err
		}
		dashboard.Payables = summarize(report)
		return nil
	})
	if s.sales != nil {
		group.Go(func() error {
			summary, err := s.sales.SummarizeDay(groupCtx, now)
			if err != nil {
				return err
			}
			dashboard.Sales = summary
			return nil
		})
	}
	if s.tanks != nil {
		group.Go(func() error {
			low, err := s.tanks.LowTanks(groupCtx)
			if err != nil {
				return err
			}
			dashboard.LowTanks = low
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}
