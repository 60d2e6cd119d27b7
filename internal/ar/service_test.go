package ar

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	invoices map[int64]*Invoice
	payments []PaymentInput
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{invoices: make(map[int64]*Invoice)}
}

func (r *memoryRepo) CreateInvoice(ctx context.Context, input InvoiceInput) (*Invoice, error) {
	r.nextID++
	inv := &Invoice{
		ID:         r.nextID,
		Number:     input.Number,
		CustomerID: input.CustomerID,
		SaleID:     input.SaleID,
		Currency:   input.Currency,
		Total:      input.Total,
		Status:     StatusPosted,
		IssuedAt:   input.IssuedAt,
		DueAt:      input.DueAt,
	}
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *memoryRepo) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (r *memoryRepo) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryRepo) ListOutstanding(ctx context.Context) ([]OutstandingRow, error) {
	var out []OutstandingRow
	for _, inv := range r.invoices {
		if inv.Status != StatusPosted {
			continue
		}
		remaining := inv.Total
		for _, p := range r.payments {
			if p.InvoiceID == inv.ID {
				remaining = remaining.Sub(p.Amount)
			}
		}
		if remaining.IsPositive() {
			out = append(out, OutstandingRow{
				InvoiceID:    inv.ID,
				Number:       inv.Number,
				CustomerName: "Customer",
				Currency:     inv.Currency,
				Outstanding:  remaining,
				IssuedAt:     inv.IssuedAt,
				DueAt:        inv.DueAt,
			})
		}
	}
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (t *memoryTx) InsertPayment(ctx context.Context, payment PaymentInput) (int64, error) {
	t.repo.payments = append(t.repo.payments, payment)
	return int64(len(t.repo.payments)), nil
}

func (t *memoryTx) AllocatedAmount(ctx context.Context, invoiceID int64) (string, error) {
	total := decimal.Zero
	for _, p := range t.repo.payments {
		if p.InvoiceID == invoiceID {
			total = total.Add(p.Amount)
		}
	}
	return total.String(), nil
}

func (t *memoryTx) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	if inv, ok := t.repo.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}

type countingBumper struct{ bumps int }

func (b *countingBumper) Bump(ctx context.Context) error {
	b.bumps++
	return nil
}

func postInvoice(t *testing.T, svc *Service, total string, due time.Time) *Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		CustomerID: 1,
		SaleID:     9,
		Number:     "AR-0001",
		Currency:   "PKR",
		Total:      decimal.RequireFromString(total),
		IssuedAt:   due.AddDate(0, 0, -14),
		DueAt:      due,
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.CreateInvoice(context.Background(), InvoiceInput{Total: decimal.NewFromInt(100)})
	require.Error(t, err)
	_, err = svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: 1, Total: decimal.Zero})
	require.Error(t, err)
}

func TestRegisterPaymentMarksInvoicePaid(t *testing.T) {
	repo := newMemoryRepo()
	bumper := &countingBumper{}
	svc := NewService(repo, bumper)
	inv := postInvoice(t, svc, "500", time.Now())

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{InvoiceID: inv.ID, Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)
	require.Equal(t, StatusPosted, repo.invoices[inv.ID].Status)

	_, err = svc.RegisterPayment(context.Background(), PaymentInput{InvoiceID: inv.ID, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, repo.invoices[inv.ID].Status)

	// Create + two payments bump the cache three times.
	require.Equal(t, 3, bumper.bumps)
}

func TestRegisterPaymentRejectsOverpayment(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	inv := postInvoice(t, svc, "100", time.Now())

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{InvoiceID: inv.ID, Amount: decimal.NewFromInt(150)})
	require.Error(t, err)
}

func TestRegisterPaymentRejectsClosedInvoice(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	inv := postInvoice(t, svc, "100", time.Now())
	repo.invoices[inv.ID].Status = StatusVoid

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{InvoiceID: inv.ID, Amount: decimal.NewFromInt(50)})
	require.Error(t, err)
}

func TestOutstandingSkipsPaidInvoices(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	inv := postInvoice(t, svc, "250.50", due)

	records, err := svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "AR-0001", records[0].ReferenceNumber)
	require.Equal(t, "250.5", records[0].Amount)
	require.Equal(t, due, records[0].DueDate)

	_, err = svc.RegisterPayment(context.Background(), PaymentInput{InvoiceID: inv.ID, Amount: decimal.RequireFromString("250.50")})
	require.NoError(t, err)

	records, err = svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}
