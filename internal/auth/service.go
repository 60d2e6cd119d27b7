package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forecourt-hq/forecourt/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Pending accounts are
// reported distinctly so the UI can show the approval state; disabled
// accounts are indistinguishable from bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	switch user.Status {
	case StatusActive:
		return user, nil
	case StatusPending:
		return nil, shared.ErrAccountPending
	default:
		return nil, shared.ErrInvalidCredentials
	}
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates an account in pending status awaiting admin approval.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("auth: password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return s.repo.CreateUser(ctx, User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		Role:         RoleCashier,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
