package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	tanks      map[int64]*Tank
	deliveries []Delivery
	readings   []DipReading
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tanks: make(map[int64]*Tank)}
}

func (r *memoryRepo) CreateTank(ctx context.Context, input TankInput) (*Tank, error) {
	r.nextID++
	tank := &Tank{
		ID:             r.nextID,
		Name:           input.Name,
		FuelGrade:      input.FuelGrade,
		CapacityLitres: input.CapacityLitres,
		ReorderLevel:   input.ReorderLevel,
		BookStock:      decimal.Zero,
		IsActive:       true,
	}
	r.tanks[tank.ID] = tank
	copied := *tank
	return &copied, nil
}

func (r *memoryRepo) GetTank(ctx context.Context, id int64) (*Tank, error) {
	tank, ok := r.tanks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *tank
	return &copied, nil
}

func (r *memoryRepo) UpdateTank(ctx context.Context, id int64, input TankInput) (*Tank, error) {
	tank, ok := r.tanks[id]
	if !ok {
		return nil, ErrNotFound
	}
	tank.Name = input.Name
	tank.FuelGrade = input.FuelGrade
	tank.CapacityLitres = input.CapacityLitres
	tank.ReorderLevel = input.ReorderLevel
	copied := *tank
	return &copied, nil
}

func (r *memoryRepo) ListTanks(ctx context.Context) ([]Tank, error) {
	var out []Tank
	for _, tank := range r.tanks {
		if tank.IsActive {
			out = append(out, *tank)
		}
	}
	return out, nil
}

func (r *memoryRepo) AdjustStock(ctx context.Context, tankID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	tank, ok := r.tanks[tankID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	next := tank.BookStock.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ErrInsufficientStock
	}
	tank.BookStock = next
	return next, nil
}

func (r *memoryRepo) CreateDelivery(ctx context.Context, delivery *Delivery) error {
	tank, ok := r.tanks[delivery.TankID]
	if !ok {
		return ErrNotFound
	}
	delivery.ID = int64(len(r.deliveries) + 1)
	tank.BookStock = tank.BookStock.Add(delivery.Litres)
	r.deliveries = append(r.deliveries, *delivery)
	return nil
}

func (r *memoryRepo) SetDeliveryBill(ctx context.Context, deliveryID, billID int64) error {
	for i := range r.deliveries {
		if r.deliveries[i].ID == deliveryID {
			r.deliveries[i].BillID = billID
		}
	}
	return nil
}

func (r *memoryRepo) ListDeliveries(ctx context.Context, tankID int64) ([]Delivery, error) {
	var out []Delivery
	for _, d := range r.deliveries {
		if d.TankID == tankID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryRepo) InsertDipReading(ctx context.Context, reading *DipReading) error {
	reading.ID = int64(len(r.readings) + 1)
	r.readings = append(r.readings, *reading)
	return nil
}

func (r *memoryRepo) ListDipReadings(ctx context.Context, tankID int64) ([]DipReading, error) {
	var out []DipReading
	for _, reading := range r.readings {
		if reading.TankID == tankID {
			out = append(out, reading)
		}
	}
	return out, nil
}

type recordingBiller struct {
	billed []Delivery
	nextID int64
}

func (b *recordingBiller) PostDeliveryBill(ctx context.Context, delivery *Delivery) (int64, error) {
	b.billed = append(b.billed, *delivery)
	b.nextID++
	return b.nextID, nil
}

func seedTank(t *testing.T, svc *Service, capacity, reorder string) *Tank {
	t.Helper()
	tank, err := svc.CreateTank(context.Background(), TankInput{
		Name:           "Tank A",
		FuelGrade:      "Petrol 92",
		CapacityLitres: decimal.RequireFromString(capacity),
		ReorderLevel:   decimal.RequireFromString(reorder),
	})
	require.NoError(t, err)
	return tank
}

func TestCreateTankValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateTank(ctx, TankInput{FuelGrade: "Diesel", CapacityLitres: decimal.NewFromInt(1000)})
	require.Error(t, err, "name required")

	_, err = svc.CreateTank(ctx, TankInput{Name: "T", FuelGrade: "Diesel", CapacityLitres: decimal.Zero})
	require.Error(t, err, "capacity required")

	_, err = svc.CreateTank(ctx, TankInput{Name: "T", FuelGrade: "Diesel", CapacityLitres: decimal.NewFromInt(1000), ReorderLevel: decimal.NewFromInt(2000)})
	require.Error(t, err, "reorder above capacity")
}

func TestRecordDeliveryGrowsStockAndBills(t *testing.T) {
	repo := newMemoryRepo()
	biller := &recordingBiller{}
	svc := NewService(repo, biller)
	tank := seedTank(t, svc, "20000", "4000")

	delivery, err := svc.RecordDelivery(context.Background(), DeliveryInput{
		TankID:         tank.ID,
		SupplierID:     3,
		Litres:         decimal.NewFromInt(9000),
		UnitCost:       decimal.RequireFromString("245.50"),
		SupplierBilled: true,
	})
	require.NoError(t, err)
	require.Equal(t, "2209500.00", delivery.TotalCost.StringFixed(2))
	require.Equal(t, int64(1), delivery.BillID)
	require.Len(t, biller.billed, 1)
	require.True(t, repo.tanks[tank.ID].BookStock.Equal(decimal.NewFromInt(9000)))
}

func TestRecordDeliveryRejectsOverfill(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	tank := seedTank(t, svc, "10000", "2000")

	_, err := svc.RecordDelivery(context.Background(), DeliveryInput{
		TankID: tank.ID,
		Litres: decimal.NewFromInt(10001),
	})
	require.Error(t, err)
	require.True(t, repo.tanks[tank.ID].BookStock.IsZero())
}

func TestDepleteStopsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	tank := seedTank(t, svc, "10000", "2000")
	_, err := svc.RecordDelivery(context.Background(), DeliveryInput{TankID: tank.ID, Litres: decimal.NewFromInt(100)})
	require.NoError(t, err)

	require.NoError(t, svc.Deplete(context.Background(), tank.ID, decimal.NewFromInt(60)))
	err = svc.Deplete(context.Background(), tank.ID, decimal.NewFromInt(50))
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.True(t, repo.tanks[tank.ID].BookStock.Equal(decimal.NewFromInt(40)))
}

func TestDipReadingVariance(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	tank := seedTank(t, svc, "10000", "2000")
	_, err := svc.RecordDelivery(context.Background(), DeliveryInput{TankID: tank.ID, Litres: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	reading, err := svc.RecordDipReading(context.Background(), tank.ID, decimal.RequireFromString("4920.5"), "7", time.Now())
	require.NoError(t, err)
	require.Equal(t, "-79.5", reading.Variance.String())
	require.Equal(t, "5000", reading.BookLitres.String())
}

func TestLowTankDetection(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	tank := seedTank(t, svc, "10000", "2000")
	_, err := svc.RecordDelivery(context.Background(), DeliveryInput{TankID: tank.ID, Litres: decimal.NewFromInt(2500)})
	require.NoError(t, err)

	low, err := svc.LowTanks(context.Background())
	require.NoError(t, err)
	require.Empty(t, low)

	require.NoError(t, svc.Deplete(context.Background(), tank.ID, decimal.NewFromInt(500)))
	low, err = svc.LowTanks(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.True(t, low[0].Low)

	levels, err := svc.Levels(context.Background())
	require.NoError(t, err)
	require.Equal(t, "20", levels[0].PercentFull.String())
}
