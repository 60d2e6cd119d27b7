package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tank is one underground storage tank. BookStock is the running litre
// balance maintained from deliveries and sales depletion.
type Tank struct {
	ID             int64
	Name           string
	FuelGrade      string
	CapacityLitres decimal.Decimal
	ReorderLevel   decimal.Decimal
	BookStock      decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TankInput carries create/update fields.
type TankInput struct {
	Name           string
	FuelGrade      string
	CapacityLitres decimal.Decimal
	ReorderLevel   decimal.Decimal
}

// Delivery is a fuel drop into a tank.
type Delivery struct {
	ID          int64
	TankID      int64
	SupplierID  int64
	Litres      decimal.Decimal
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	BillID      int64
	DeliveredAt time.Time
	CreatedAt   time.Time
}

// DeliveryInput carries a requested fuel drop. When SupplierBilled is
// set a payable bill is raised for the total cost.
type DeliveryInput struct {
	TankID         int64
	SupplierID     int64
	Litres         decimal.Decimal
	UnitCost       decimal.Decimal
	DeliveredAt    time.Time
	SupplierBilled bool
}

// DipReading is a manual stick measurement against a tank. Variance is
// observed minus book at the time of the reading.
type DipReading struct {
	ID             int64
	TankID         int64
	ObservedLitres decimal.Decimal
	BookLitres     decimal.Decimal
	Variance       decimal.Decimal
	TakenBy        string
	TakenAt        time.Time
}

// TankLevel is the dashboard view of one tank.
type TankLevel struct {
	TankID       int64           `json:"tank_id"`
	Name         string          `json:"name"`
	FuelGrade    string          `json:"fuel_grade"`
	BookStock    decimal.Decimal `json:"book_stock"`
	Capacity     decimal.Decimal `json:"capacity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	PercentFull  decimal.Decimal `json:"percent_full"`
	Low          bool            `json:"low"`
}
