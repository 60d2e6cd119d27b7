package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/forecourt-hq/forecourt/internal/shared"
)

type memoryRepo struct {
	users    map[string]User
	sessions map[string]int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User), sessions: make(map[string]int64)}
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &user, nil
}

func (r *memoryRepo) CreateUser(ctx context.Context, user User) (*User, error) {
	key := strings.ToLower(user.Email)
	if _, exists := r.users[key]; exists {
		return nil, ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	r.users[key] = user
	return &user, nil
}

func (r *memoryRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *memoryRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *memoryRepo) seed(t *testing.T, email, password string, role Role, status Status) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	r.nextID++
	r.users[email] = User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(t, "manager@station.pk", "secret-password", RoleManager, StatusActive)
	repo.seed(t, "new@station.pk", "secret-password", RoleCashier, StatusPending)
	repo.seed(t, "gone@station.pk", "secret-password", RoleCashier, StatusDisabled)
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "manager@station.pk", "secret-password")
	require.NoError(t, err)
	require.Equal(t, RoleManager, user.Role)

	_, err = svc.Authenticate(ctx, "manager@station.pk", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "new@station.pk", "secret-password")
	require.ErrorIs(t, err, shared.ErrAccountPending)

	_, err = svc.Authenticate(ctx, "gone@station.pk", "secret-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@station.pk", "secret-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterCreatesPendingCashier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Attendant@Station.PK",
		Name:     "Night Attendant",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.Equal(t, "attendant@station.pk", user.Email)
	require.Equal(t, RoleCashier, user.Role)
	require.Equal(t, StatusPending, user.Status)
	require.NotEqual(t, "secret-password", user.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "attendant@station.pk",
		Name:     "Duplicate",
		Password: "secret-password",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "short@station.pk",
		Name:     "Short",
		Password: "short",
	})
	require.Error(t, err)
}

func TestRoleTiers(t *testing.T) {
	require.True(t, RoleAdmin.Allows(RoleCashier))
	require.True(t, RoleAdmin.Allows(RoleAdmin))
	require.True(t, RoleManager.Allows(RoleCashier))
	require.False(t, RoleManager.Allows(RoleAdmin))
	require.False(t, RoleCashier.Allows(RoleManager))
	require.False(t, Role("owner").Valid())
	require.False(t, Role("owner").Allows(RoleCashier))
}
