package pos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/forecourt-hq/forecourt/internal/settings"
)

type memoryRepo struct {
	sales  map[int64]*Sale
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sales: make(map[int64]*Sale)}
}

func (r *memoryRepo) CreateSale(ctx context.Context, sale *Sale) error {
	r.nextID++
	sale.ID = r.nextID
	for i := range sale.Lines {
		sale.Lines[i].SaleID = sale.ID
		sale.Lines[i].ID = int64(i + 1)
	}
	copied := *sale
	r.sales[sale.ID] = &copied
	return nil
}

func (r *memoryRepo) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sale
	return &copied, nil
}

func (r *memoryRepo) ListByDay(ctx context.Context, day time.Time) ([]Sale, error) {
	var out []Sale
	for _, sale := range r.sales {
		if sale.SoldAt.Year() == day.Year() && sale.SoldAt.YearDay() == day.YearDay() {
			out = append(out, *sale)
		}
	}
	return out, nil
}

func (r *memoryRepo) SummarizeDay(ctx context.Context, day time.Time) (DaySummary, error) {
	summary := DaySummary{Day: day, CashTotal: decimal.Zero, CreditTotal: decimal.Zero}
	sales, _ := r.ListByDay(ctx, day)
	for _, sale := range sales {
		summary.SaleCount++
		if sale.Tender == TenderCash {
			summary.CashTotal = summary.CashTotal.Add(sale.Total)
		} else {
			summary.CreditTotal = summary.CreditTotal.Add(sale.Total)
		}
	}
	summary.GrandTotal = summary.CashTotal.Add(summary.CreditTotal)
	return summary, nil
}

type fixedSettings struct{ cfg settings.Settings }

func (f fixedSettings) Load(ctx context.Context) (settings.Settings, error) {
	return f.cfg, nil
}

type recordingPoster struct{ posted []*Sale }

func (p *recordingPoster) PostCreditSale(ctx context.Context, sale *Sale) error {
	p.posted = append(p.posted, sale)
	return nil
}

type recordingDepleter struct {
	depletions map[int64]decimal.Decimal
}

func (d *recordingDepleter) Deplete(ctx context.Context, tankID int64, litres decimal.Decimal) error {
	if d.depletions == nil {
		d.depletions = make(map[int64]decimal.Decimal)
	}
	current := d.depletions[tankID]
	d.depletions[tankID] = current.Add(litres)
	return nil
}

type failingDepleter struct{}

func (failingDepleter) Deplete(ctx context.Context, tankID int64, litres decimal.Decimal) error {
	return errors.New("tank offline")
}

func testService(t *testing.T) (*Service, *memoryRepo, *recordingPoster, *recordingDepleter) {
	t.Helper()
	repo := newMemoryRepo()
	poster := &recordingPoster{}
	depleter := &recordingDepleter{}
	loader := fixedSettings{cfg: settings.Settings{
		StationName:  "Test Station",
		CurrencyCode: "PKR",
		VATRate:      decimal.RequireFromString("0.17"),
	}}
	return NewService(repo, loader, poster, depleter), repo, poster, depleter
}

func fuelLine(tankID int64, litres, price string) LineInput {
	return LineInput{
		Kind:        KindFuel,
		TankID:      tankID,
		Description: "Petrol 92",
		Quantity:    decimal.RequireFromString(litres),
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func TestCreateSaleLineMath(t *testing.T) {
	svc, _, _, _ := testService(t)
	sale, err := svc.CreateSale(context.Background(), SaleInput{
		CashierID: "7",
		Tender:    TenderCash,
		Lines: []LineInput{
			fuelLine(1, "10.5", "272.89"),
			{Kind: KindShop, Description: "Engine oil", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("1450.00")},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "2865.35", sale.Lines[0].LineTotal.StringFixed(2))
	require.Equal(t, "2900.00", sale.Lines[1].LineTotal.StringFixed(2))
	require.Equal(t, "5765.35", sale.Subtotal.StringFixed(2))
	require.Equal(t, "980.11", sale.Tax.StringFixed(2))
	require.Equal(t, "6745.46", sale.Total.StringFixed(2))
	require.Equal(t, "PKR", sale.Currency)
	require.True(t, strings.HasPrefix(sale.ReceiptNumber, "RCT-"))
}

func TestCreateSaleValidation(t *testing.T) {
	svc, _, _, _ := testService(t)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, SaleInput{Tender: "CHEQUE", Lines: []LineInput{fuelLine(1, "1", "100")}})
	require.Error(t, err)

	_, err = svc.CreateSale(ctx, SaleInput{Tender: TenderCash})
	require.Error(t, err)

	_, err = svc.CreateSale(ctx, SaleInput{Tender: TenderCredit, Lines: []LineInput{fuelLine(1, "1", "100")}})
	require.Error(t, err, "credit sale without a customer")

	_, err = svc.CreateSale(ctx, SaleInput{Tender: TenderCash, Lines: []LineInput{fuelLine(1, "0", "100")}})
	require.Error(t, err, "zero quantity")

	_, err = svc.CreateSale(ctx, SaleInput{Tender: TenderCash, Lines: []LineInput{fuelLine(0, "5", "100")}})
	require.Error(t, err, "fuel line without a tank")
}

func TestCreditSaleRaisesInvoice(t *testing.T) {
	svc, _, poster, _ := testService(t)
	sale, err := svc.CreateSale(context.Background(), SaleInput{
		CustomerID: 42,
		Tender:     TenderCredit,
		Lines:      []LineInput{fuelLine(1, "20", "272.89")},
	})
	require.NoError(t, err)
	require.Len(t, poster.posted, 1)
	require.Equal(t, sale.ID, poster.posted[0].ID)

	_, err = svc.CreateSale(context.Background(), SaleInput{
		Tender: TenderCash,
		Lines:  []LineInput{fuelLine(1, "5", "272.89")},
	})
	require.NoError(t, err)
	require.Len(t, poster.posted, 1, "cash sales do not raise invoices")
}

func TestDepletionFailureNamesRecordedSale(t *testing.T) {
	repo := newMemoryRepo()
	loader := fixedSettings{cfg: settings.Settings{CurrencyCode: "PKR", VATRate: decimal.Zero}}
	svc := NewService(repo, loader, nil, failingDepleter{})

	_, err := svc.CreateSale(context.Background(), SaleInput{
		Tender: TenderCash,
		Lines:  []LineInput{fuelLine(1, "10", "272.89")},
	})
	require.Error(t, err)

	// The ticket stays persisted when depletion fails; the error carries
	// the receipt number so the partial state can be reconciled.
	require.Len(t, repo.sales, 1)
	var recorded *Sale
	for _, sale := range repo.sales {
		recorded = sale
	}
	require.Contains(t, err.Error(), recorded.ReceiptNumber)
	require.Contains(t, err.Error(), "recorded but")
}

func TestFuelLinesDepleteTanks(t *testing.T) {
	svc, _, _, depleter := testService(t)
	_, err := svc.CreateSale(context.Background(), SaleInput{
		Tender: TenderCash,
		Lines: []LineInput{
			fuelLine(1, "12.5", "272.89"),
			fuelLine(1, "7.5", "272.89"),
			{Kind: KindShop, Description: "Wiper fluid", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(300)},
		},
	})
	require.NoError(t, err)
	require.True(t, depleter.depletions[1].Equal(decimal.NewFromInt(20)))
	require.Len(t, depleter.depletions, 1)
}
