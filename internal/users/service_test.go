package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forecourt-hq/forecourt/internal/auth"
	"github.com/forecourt-hq/forecourt/internal/shared"
)

type memoryRepo struct {
	users map[int64]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*User)}
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryRepo) ListPending(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if u.Status == auth.StatusPending {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status auth.Status) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	return nil
}

func TestApprovePendingAccount(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[7] = &User{ID: 7, Email: "pending@station.pk", Role: auth.RoleCashier, Status: auth.StatusPending}
	svc := NewService(repo, nil)

	require.NoError(t, svc.Approve(context.Background(), 1, 7, auth.RoleManager))
	require.Equal(t, auth.StatusActive, repo.users[7].Status)
	require.Equal(t, auth.RoleManager, repo.users[7].Role)

	// Approving twice fails because the account is no longer pending.
	require.Error(t, svc.Approve(context.Background(), 1, 7, auth.RoleManager))
}

func TestApproveRejectsUnknownRole(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[7] = &User{ID: 7, Status: auth.StatusPending}
	svc := NewService(repo, nil)
	require.Error(t, svc.Approve(context.Background(), 1, 7, auth.Role("owner")))
}

func TestDeactivateGuardsSelf(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[3] = &User{ID: 3, Status: auth.StatusActive}
	svc := NewService(repo, nil)

	require.Error(t, svc.Deactivate(context.Background(), 3, 3))
	require.NoError(t, svc.Deactivate(context.Background(), 1, 3))
	require.Equal(t, auth.StatusDisabled, repo.users[3].Status)
}
