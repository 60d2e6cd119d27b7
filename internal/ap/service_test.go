package ap

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	bills    map[int64]*Bill
	payments []PaymentInput
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bills: make(map[int64]*Bill)}
}

func (r *memoryRepo) CreateBill(ctx context.Context, input BillInput) (*Bill, error) {
	r.nextID++
	bill := &Bill{
		ID:         r.nextID,
		Number:     input.Number,
		SupplierID: input.SupplierID,
		DeliveryID: input.DeliveryID,
		Currency:   input.Currency,
		Total:      input.Total,
		Status:     StatusPosted,
		IssuedAt:   input.IssuedAt,
		DueAt:      input.DueAt,
	}
	r.bills[bill.ID] = bill
	return bill, nil
}

func (r *memoryRepo) GetBill(ctx context.Context, id int64) (*Bill, error) {
	bill, ok := r.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *bill
	return &copied, nil
}

func (r *memoryRepo) ListBills(ctx context.Context) ([]Bill, error) {
	var out []Bill
	for _, bill := range r.bills {
		out = append(out, *bill)
	}
	return out, nil
}

func (r *memoryRepo) ListOutstanding(ctx context.Context) ([]OutstandingRow, error) {
	var out []OutstandingRow
	for _, bill := range r.bills {
		if bill.Status != StatusPosted {
			continue
		}
		remaining := bill.Total
		for _, p := range r.payments {
			if p.BillID == bill.ID {
				remaining = remaining.Sub(p.Amount)
			}
		}
		if remaining.IsPositive() {
			out = append(out, OutstandingRow{
				BillID:       bill.ID,
				Number:       bill.Number,
				SupplierName: "Supplier",
				Currency:     bill.Currency,
				Outstanding:  remaining,
				IssuedAt:     bill.IssuedAt,
				DueAt:        bill.DueAt,
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

func (t *memoryTx) AllocatedAmount(ctx context.Context, billID int64) (string, error) {
	total := decimal.Zero
	for _, p := range t.repo.payments {
		if p.BillID == billID {
			total = total.Add(p.Amount)
		}
	}
	return total.String(), nil
}

func (t *memoryTx) UpdateStatus(ctx context.Context, id int64, status BillStatus) error {
	if bill, ok := t.repo.bills[id]; ok {
		bill.Status = status
	}
	return nil
}

type countingBumper struct{ bumps int }

func (b *countingBumper) Bump(ctx context.Context) error {
	b.bumps++
	return nil
}

func postBill(t *testing.T, svc *Service, total string, due time.Time) *Bill {
	t.Helper()
	bill, err := svc.CreateBill(context.Background(), BillInput{
		SupplierID: 2,
		DeliveryID: 5,
		Number:     "AP-0001",
		Currency:   "PKR",
		Total:      decimal.RequireFromString(total),
		IssuedAt:   due.AddDate(0, 0, -30),
		DueAt:      due,
	})
	require.NoError(t, err)
	return bill
}

func TestCreateBillValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.CreateBill(context.Background(), BillInput{Total: decimal.NewFromInt(100)})
	require.Error(t, err)
	_, err = svc.CreateBill(context.Background(), BillInput{SupplierID: 2, Total: decimal.Zero})
	require.Error(t, err)
}

func TestRegisterPaymentMarksBillPaid(t *testing.T) {
	repo := newMemoryRepo()
	bumper := &countingBumper{}
	svc := NewService(repo, bumper)
	bill := postBill(t, svc, "1000", time.Now())

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{BillID: bill.ID, Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)
	require.Equal(t, StatusPosted, repo.bills[bill.ID].Status)

	_, err = svc.RegisterPayment(context.Background(), PaymentInput{BillID: bill.ID, Amount: decimal.NewFromInt(600)})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, repo.bills[bill.ID].Status)

	require.Equal(t, 3, bumper.bumps)
}

func TestRegisterPaymentRejectsOverpayment(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	bill := postBill(t, svc, "100", time.Now())

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{BillID: bill.ID, Amount: decimal.NewFromInt(101)})
	require.Error(t, err)
}

func TestRegisterPaymentRejectsClosedBill(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	bill := postBill(t, svc, "100", time.Now())
	repo.bills[bill.ID].Status = StatusVoid

	_, err := svc.RegisterPayment(context.Background(), PaymentInput{BillID: bill.ID, Amount: decimal.NewFromInt(50)})
	require.Error(t, err)
}

func TestOutstandingSkipsPaidBills(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bill := postBill(t, svc, "8400.75", due)

	records, err := svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "AP-0001", records[0].ReferenceNumber)
	require.Equal(t, "8400.75", records[0].Amount)
	require.Equal(t, due, records[0].DueDate)

	_, err = svc.RegisterPayment(context.Background(), PaymentInput{BillID: bill.ID, Amount: decimal.RequireFromString("8400.75")})
	require.NoError(t, err)

	records, err = svc.Outstanding(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}
