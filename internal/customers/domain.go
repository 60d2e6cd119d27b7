package customers

import "time"

// Customer is a credit customer of the station.
type Customer struct {
	ID          int64
	Name        string
	Phone       string
	Address     string
	CreditTerms int // days until an invoice falls due
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomerInput carries create/update fields.
type CustomerInput struct {
	Name        string
	Phone       string
	Address     string
	CreditTerms int
}
