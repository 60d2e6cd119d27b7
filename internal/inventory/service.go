package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RepositoryPort defines data access methods for inventory.
type RepositoryPort interface {
	CreateTank(ctx context.Context, input TankInput) (*Tank, error)
	GetTank(ctx context.Context, id int64) (*Tank, error)
	UpdateTank(ctx context.Context, id int64, input TankInput) (*Tank, error)
	ListTanks(ctx context.Context) ([]Tank, error)
	AdjustStock(ctx context.Context, tankID int64, delta decimal.Decimal) (decimal.Decimal, error)
	CreateDelivery(ctx context.Context, delivery *Delivery) error
	SetDeliveryBill(ctx context.Context, deliveryID, billID int64) error
	ListDeliveries(ctx context.Context, tankID int64) ([]Delivery, error)
	InsertDipReading(ctx context.Context, reading *DipReading) error
	ListDipReadings(ctx context.Context, tankID int64) ([]DipReading, error)
}

// BillPoster raises a payable for a supplier-billed delivery. Wired to
// the AP service in the application layer.
type BillPoster interface {
	PostDeliveryBill(ctx context.Context, delivery *Delivery) (int64, error)
}

// Service handles tank stock.
type Service struct {
	repo  RepositoryPort
	bills BillPoster
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, bills BillPoster) *Service {
	return &Service{repo: repo, bills: bills}
}

// CreateTank registers a tank.
func (s *Service) CreateTank(ctx context.Context, input TankInput) (*Tank, error) {
	if err := validateTank(input); err != nil {
		return nil, err
	}
	return s.repo.CreateTank(ctx, input)
}

// UpdateTank rewrites tank master data.
func (s *Service) UpdateTank(ctx context.Context, id int64, input TankInput) (*Tank, error) {
	if err := validateTank(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateTank(ctx, id, input)
}

func validateTank(input TankInput) error {
	if input.Name == "" {
		return errors.New("inventory: tank name required")
	}
	if !input.CapacityLitres.IsPositive() {
		return errors.New("inventory: capacity must be positive")
	}
	if input.ReorderLevel.IsNegative() || input.ReorderLevel.GreaterThan(input.CapacityLitres) {
		return errors.New("inventory: reorder level must be between zero and capacity")
	}
	return nil
}

// GetTank loads one tank.
func (s *Service) GetTank(ctx context.Context, id int64) (*Tank, error) {
	return s.repo.GetTank(ctx, id)
}

// ListTanks returns all active tanks.
func (s *Service) ListTanks(ctx context.Context) ([]Tank, error) {
	return s.repo.ListTanks(ctx)
}

// RecordDelivery books a fuel drop, grows stock and raises a payable
// when the supplier billed the load.
func (s *Service) RecordDelivery(ctx context.Context, input DeliveryInput) (*Delivery, error) {
	if input.TankID == 0 {
		return nil, errors.New("inventory: tank required")
	}
	if !input.Litres.IsPositive() {
		return nil, errors.New("inventory: litres must be positive")
	}
	if input.SupplierBilled && input.SupplierID == 0 {
		return nil, errors.New("inventory: billed delivery requires a supplier")
	}
	if input.UnitCost.IsNegative() {
		return nil, errors.New("inventory: unit cost cannot be negative")
	}
	tank, err := s.repo.GetTank(ctx, input.TankID)
	if err != nil {
		return nil, err
	}
	if tank.BookStock.Add(input.Litres).GreaterThan(tank.CapacityLitres) {
		return nil, fmt.Errorf("inventory: delivery overfills tank %s", tank.Name)
	}
	if input.DeliveredAt.IsZero() {
		input.DeliveredAt = time.Now()
	}

	delivery := &Delivery{
		TankID:      input.TankID,
		SupplierID:  input.SupplierID,
		Litres:      input.Litres,
		UnitCost:    input.UnitCost,
		TotalCost:   input.Litres.Mul(input.UnitCost).Round(2),
		DeliveredAt: input.DeliveredAt,
	}
	if err := s.repo.CreateDelivery(ctx, delivery); err != nil {
		return nil, err
	}

	if input.SupplierBilled && s.bills != nil {
		billID, err := s.bills.PostDeliveryBill(ctx, delivery)
		if err != nil {
			return nil, fmt.Errorf("inventory: post delivery bill: %w", err)
		}
		delivery.BillID = billID
		if err := s.repo.SetDeliveryBill(ctx, delivery.ID, billID); err != nil {
			return nil, err
		}
	}
	return delivery, nil
}

// ListDeliveries returns drops for one tank.
func (s *Service) ListDeliveries(ctx context.Context, tankID int64) ([]Delivery, error) {
	return s.repo.ListDeliveries(ctx, tankID)
}

// Deplete subtracts dispensed litres from book stock. Satisfies the POS
// depletion hook.
func (s *Service) Deplete(ctx context.Context, tankID int64, litres decimal.Decimal) error {
	if !litres.IsPositive() {
		return errors.New("inventory: depletion must be positive")
	}
	_, err := s.repo.AdjustStock(ctx, tankID, litres.Neg())
	return err
}

// RecordDipReading stores a stick measurement with its variance against
// book stock.
func (s *Service) RecordDipReading(ctx context.Context, tankID int64, observed decimal.Decimal, takenBy string, takenAt time.Time) (*DipReading, error) {
	if observed.IsNegative() {
		return nil, errors.New("inventory: observed litres cannot be negative")
	}
	tank, err := s.repo.GetTank(ctx, tankID)
	if err != nil {
		return nil, err
	}
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	reading := &DipReading{
		TankID:         tankID,
		ObservedLitres: observed,
		BookLitres:     tank.BookStock,
		Variance:       observed.Sub(tank.BookStock),
		TakenBy:        takenBy,
		TakenAt:        takenAt,
	}
	if err := s.repo.InsertDipReading(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListDipReadings returns measurements for one tank.
func (s *Service) ListDipReadings(ctx context.Context, tankID int64) ([]DipReading, error) {
	return s.repo.ListDipReadings(ctx, tankID)
}

// Levels returns the dashboard view of every active tank.
func (s *Service) Levels(ctx context.Context) ([]TankLevel, error) {
	tanks, err := s.repo.ListTanks(ctx)
	if err != nil {
		return nil, err
	}
	levels := make([]TankLevel, 0, len(tanks))
	for _, tank := range tanks {
		level := TankLevel{
			TankID:       tank.ID,
			Name:         tank.Name,
			FuelGrade:    tank.FuelGrade,
			BookStock:    tank.BookStock,
			Capacity:     tank.CapacityLitres,
			ReorderLevel: tank.ReorderLevel,
			Low:          tank.BookStock.LessThanOrEqual(tank.ReorderLevel),
		}
		if tank.CapacityLitres.IsPositive() {
			level.PercentFull = tank.BookStock.Div(tank.CapacityLitres).Mul(decimal.NewFromInt(100)).Round(1)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// LowTanks returns active tanks at or under their reorder level.
func (s *Service) LowTanks(ctx context.Context) ([]TankLevel, error) {
	levels, err := s.Levels(ctx)
	if err != nil {
		return nil, err
	}
	var low []TankLevel
	for _, level := range levels {
		if level.Low {
			low = append(low, level)
		}
	}
	return low, nil
}
