package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/forecourt-hq/forecourt/internal/auth"
	"github.com/forecourt-hq/forecourt/internal/shared"
)

// RepositoryPort defines data access methods for user administration.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListPending(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateStatus(ctx context.Context, id int64, status auth.Status) error
	UpdateRole(ctx context.Context, id int64, role auth.Role) error
}

// AuditPort records admin actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user administration logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ListPending returns users awaiting approval.
func (s *Service) ListPending(ctx context.Context) ([]User, error) {
	return s.repo.ListPending(ctx)
}

// Approve activates a pending account with the given role.
func (s *Service) Approve(ctx context.Context, actorID, userID int64, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("users: unknown role %q", role)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != auth.StatusPending {
		return errors.New("users: account is not pending")
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, userID, auth.StatusActive); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "approve", userID, map[string]any{"role": role})
	return nil
}

// ChangeRole updates the role of an active account.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID int64, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("users: unknown role %q", role)
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "change_role", userID, map[string]any{"role": role})
	return nil
}

// Deactivate disables an account. Admins cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return errors.New("users: cannot deactivate own account")
	}
	if err := s.repo.UpdateStatus(ctx, userID, auth.StatusDisabled); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "deactivate", userID, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	})
}
