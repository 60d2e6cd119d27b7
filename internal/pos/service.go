package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/forecourt-hq/forecourt/internal/settings"
)

// RepositoryPort defines data access methods for POS.
type RepositoryPort interface {
	CreateSale(ctx context.Context, sale *Sale) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListByDay(ctx context.Context, day time.Time) ([]Sale, error)
	SummarizeDay(ctx context.Context, day time.Time) (DaySummary, error)
}

// SettingsLoader provides the station settings at sale time.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// InvoicePoster raises a receivable for a credit-tendered sale. Wired to
// the AR service in the application layer. Called after the sale is
// persisted; a failure leaves the ticket without an invoice and must be
// reconciled against the returned receipt number.
type InvoicePoster interface {
	PostCreditSale(ctx context.Context, sale *Sale) error
}

// StockDepleter posts fuel depletion against tanks. Wired to the
// inventory service in the application layer. Called after the sale is
// persisted; a failure leaves book stock undepleted for the ticket.
type StockDepleter interface {
	Deplete(ctx context.Context, tankID int64, litres decimal.Decimal) error
}

// Service handles till tickets.
type Service struct {
	repo     RepositoryPort
	settings SettingsLoader
	invoices InvoicePoster
	stock    StockDepleter
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, loader SettingsLoader, invoices InvoicePoster, stock StockDepleter) *Service {
	return &Service{repo: repo, settings: loader, invoices: invoices, stock: stock}
}

// CreateSale prices the lines, persists the ticket, depletes fuel stock
// and raises an AR invoice when tendered on credit.
func (s *Service) CreateSale(ctx context.Context, input SaleInput) (*Sale, error) {
	if !input.Tender.Valid() {
		return nil, fmt.Errorf("pos: unknown tender %q", input.Tender)
	}
	if len(input.Lines) == 0 {
		return nil, errors.New("pos: sale needs at least one line")
	}
	if input.Tender == TenderCredit && input.CustomerID == 0 {
		return nil, errors.New("pos: credit sale requires a customer")
	}
	if input.SoldAt.IsZero() {
		input.SoldAt = time.Now()
	}

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		ReceiptNumber: newReceiptNumber(),
		CashierID:     input.CashierID,
		CustomerID:    input.CustomerID,
		Tender:        input.Tender,
		Currency:      cfg.CurrencyCode,
		SoldAt:        input.SoldAt,
	}
	subtotal := decimal.Zero
	for i, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("pos: line %d quantity must be positive", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("pos: line %d unit price cannot be negative", i+1)
		}
		if line.Kind == KindFuel && line.TankID == 0 {
			return nil, fmt.Errorf("pos: line %d fuel line requires a tank", i+1)
		}
		lineTotal := line.Quantity.Mul(line.UnitPrice).Round(2)
		sale.Lines = append(sale.Lines, SaleLine{
			Kind:        line.Kind,
			TankID:      line.TankID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	sale.Subtotal = subtotal
	sale.Tax = subtotal.Mul(cfg.VATRate).Round(2)
	sale.Total = sale.Subtotal.Add(sale.Tax)

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}

	if s.stock != nil {
		for _, line := range sale.Lines {
			if line.Kind != KindFuel {
				continue
			}
			if err := s.stock.Deplete(ctx, line.TankID, line.Quantity); err != nil {
				return nil, fmt.Errorf("pos: sale %s recorded but tank %d not depleted: %w", sale.ReceiptNumber, line.TankID, err)
			}
		}
	}
	if sale.Tender == TenderCredit && s.invoices != nil {
		if err := s.invoices.PostCreditSale(ctx, sale); err != nil {
			return nil, fmt.Errorf("pos: sale %s recorded but invoice not raised: %w", sale.ReceiptNumber, err)
		}
	}
	return sale, nil
}

// GetSale loads one ticket.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListByDay returns tickets for one calendar day.
func (s *Service) ListByDay(ctx context.Context, day time.Time) ([]Sale, error) {
	return s.repo.ListByDay(ctx, day)
}

// SummarizeDay aggregates one calendar day of tickets.
func (s *Service) SummarizeDay(ctx context.Context, day time.Time) (DaySummary, error) {
	return s.repo.SummarizeDay(ctx, day)
}

func newReceiptNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RCT-" + strings.ToUpper(raw[:10])
}
