package suppliers

import "time"

// Supplier is a fuel or goods supplier the station buys from.
type Supplier struct {
	ID           int64
	Name         string
	ContactName  string
	Phone        string
	Address      string
	PaymentTerms int // days until a bill falls due
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SupplierInput carries create/update fields.
type SupplierInput struct {
	Name         string
	ContactName  string
	Phone        string
	Address      string
	PaymentTerms int
}
