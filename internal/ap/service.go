package ap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/aging"
)

// RepositoryPort defines data access methods for AP.
type RepositoryPort interface {
	CreateBill(ctx context.Context, input BillInput) (*Bill, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	ListBills(ctx context.Context) ([]Bill, error)
	ListOutstanding(ctx context.Context) ([]OutstandingRow, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// CacheBumper invalidates cached report payloads after postings.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service handles AP business logic.
type Service struct {
	repo  RepositoryPort
	cache CacheBumper
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache CacheBumper) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateBill posts a payable raised against a supplier.
func (s *Service) CreateBill(ctx context.Context, input BillInput) (*Bill, error) {
	if input.SupplierID == 0 {
		return nil, errors.New("ap: supplier ID required")
	}
	if !input.Total.IsPositive() {
		return nil, errors.New("ap: total must be positive")
	}
	if input.IssuedAt.IsZero() {
		input.IssuedAt = time.Now()
	}
	if input.DueAt.IsZero() {
		input.DueAt = input.IssuedAt
	}
	bill, err := s.repo.CreateBill(ctx, input)
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return bill, nil
}

// RegisterPayment records a disbursement and marks the bill paid once
// fully allocated.
func (s *Service) RegisterPayment(ctx context.Context, input PaymentInput) (*Payment, error) {
	if input.BillID == 0 {
		return nil, errors.New("ap: bill ID required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("ap: amount must be positive")
	}
	bill, err := s.repo.GetBill(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	if bill.Status != StatusPosted {
		return nil, fmt.Errorf("ap: bill %s is %s, not open", bill.Number, bill.Status)
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
		allocatedRaw, err := tx.AllocatedAmount(ctx, input.BillID)
		if err != nil {
			return err
		}
		allocated, err := decimal.NewFromString(allocatedRaw)
		if err != nil {
			return err
		}
		if allocated.GreaterThan(bill.Total) {
			return fmt.Errorf("ap: payment exceeds balance of bill %s", bill.Number)
		}
		if allocated.Equal(bill.Total) {
			if err := tx.UpdateStatus(ctx, bill.ID, StatusPaid); err != nil {
				return err
			}
		}
		payment = Payment{
			ID:     id,
			Number: input.Number,
			BillID: input.BillID,
			Amount: input.Amount,
			PaidAt: input.PaidAt,
			Method: input.Method,
			Note:   input.Note,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &payment, nil
}

// ListBills returns all AP bills.
func (s *Service) ListBills(ctx context.Context) ([]Bill, error) {
	return s.repo.ListBills(ctx)
}

// Outstanding converts unpaid bills into the shape the aging report
// consumes.
func (s *Service) Outstanding(ctx context.Context) ([]aging.OutstandingRecord, error) {
	rows, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]aging.OutstandingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, aging.OutstandingRecord{
			ID:               strconv.FormatInt(row.BillID, 10),
			ReferenceNumber:  row.Number,
			CounterpartyName: row.SupplierName,
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
