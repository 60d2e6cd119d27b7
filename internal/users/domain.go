package users

import (
	"time"

	"github.com/forecourt-hq/forecourt/internal/auth"
)

// User represents a user account for administration.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      auth.Role
	Status    auth.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
