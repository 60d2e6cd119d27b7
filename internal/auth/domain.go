package auth

import "time"

// Role is the closed set of access tiers in the back office.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

var roleTiers = map[Role]int{
	RoleCashier: 1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Valid reports whether the role is a known tier.
func (r Role) Valid() bool {
	_, ok := roleTiers[r]
	return ok
}

// Allows reports whether the role meets or exceeds the minimum tier.
func (r Role) Allows(minimum Role) bool {
	return roleTiers[r] >= roleTiers[minimum]
}

// Status tracks the account approval lifecycle.
type Status string

const (
	// StatusPending marks freshly registered accounts awaiting approval.
	StatusPending Status = "pending"
	// StatusActive marks approved accounts that may log in.
	StatusActive Status = "active"
	// StatusDisabled marks accounts locked out by an admin.
	StatusDisabled Status = "disabled"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
