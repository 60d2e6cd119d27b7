package ar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/aging"
)

// RepositoryPort defines data access methods for AR.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	ListOutstanding(ctx context.Context) ([]OutstandingRow, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// CacheBumper invalidates cached report payloads after postings.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service handles AR business logic.
type Service struct {
	repo  RepositoryPort
	cache CacheBumper
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache CacheBumper) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateInvoice posts a receivable for a credit sale.
func (s *Service) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	if input.CustomerID == 0 {
		return nil, errors.New("ar: customer ID required")
	}
	if !input.Total.IsPositive() {
		return nil, errors.New("ar: total must be positive")
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = time.Now()
	}
	if input.DueAt.IsZero() {
		input.DueAt = input.IssuedAt
	}
	inv, err := s.repo.CreateInvoice(ctx, input)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return inv, nil
}

// RegisterPayment records a receipt against an invoice and marks the
// invoice paid once fully allocated.
func (s *Service) RegisterPayment(ctx context.Context, input PaymentInput) (*Payment, error) {
	if input.InvoiceID == 0 {
		return nil, errors.New("ar: invoice ID required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("ar: amount must be positive")
	}
	invoice, err := s.repo.GetInvoice(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusPosted {
		return nil, fmt.Errorf("ar: invoice %s is %s, not open", invoice.Number, invoice.Status)
	}
	if input.PaidAt.IsZero() {
		input.PaidAt = time.Now()
	}

	var payment Payment
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertPayment(ctx, input)
		if err != nil {
			return err
		}
		allocatedRaw, err := tx.AllocatedAmount(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		allocated, err := decimal.NewFromString(allocatedRaw)
		if err != nil {
			return err
		}
		if allocated.GreaterThan(invoice.Total) {
			return fmt.Errorf("ar: payment exceeds balance of invoice %s", invoice.Number)
		}
		if allocated.Equal(invoice.Total) {
			if err := tx.UpdateStatus(ctx, invoice.ID, StatusPaid); err != nil {
				return err
			}
		}
		payment = Payment{
			ID:        id,
			Number:    input.Number,
			InvoiceID: input.InvoiceID,
			Amount:    input.Amount,
			PaidAt:    input.PaidAt,
			Method:    input.Method,
			Note:      input.Note,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &payment, nil
}

// ListInvoices returns all AR invoices.
func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// Outstanding converts unpaid invoices into the shape the aging report
// consumes. Paid invoices never appear because the repository filters on
// remaining balance.
func (s *Service) Outstanding(ctx context.Context) ([]aging.OutstandingRecord, error) {
	rows, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]aging.OutstandingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, aging.OutstandingRecord{
			ID:               strconv.FormatInt(row.InvoiceID, 10),
			ReferenceNumber:  row.Number,
			CounterpartyName: row.CustomerName,
			OriginDate:       row.IssuedAt,
			DueDate:          row.DueAt,
			Amount:           row.Outstanding.String(),
			CurrencyCode:     row.Currency,
		})
	}
	return records, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx)
}
