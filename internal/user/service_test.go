// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo(users ...*User) *fakeRepo {
	r := &fakeRepo{users: map[string]*User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email && !u.IsDeleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeRepo) ListByIDs(_ context.Context, ids []string) ([]User, error) {
	var out []User
	for _, id := range ids {
		if u, ok := f.users[id]; ok && !u.IsDeleted() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	u.TokenVersion++
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("soft delete user: %w", core.ErrNotFound)
	}
	now := u.CreatedAt
	u.DeletedAt = &now
	return nil
}

func (f *fakeRepo) HardDelete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, p Filter, _ core.PageParams) ([]User, int, error) {
	var out []User
	for _, u := range f.users {
		if p.Role != "" && u.Role != p.Role {
			continue
		}
		if p.Search != "" && !strings.Contains(u.Email, p.Search) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func TestService_CreateAppliesDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, Quota{MaxProjects: 3, MaxMembersPerProject: 7})

	info, err := svc.Create(context.Background(), "Alice@Example.com", "hash", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Equal(t, RoleUser, info.Role)

	quota, err := svc.GetQuota(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, Quota{MaxProjects: 3, MaxMembersPerProject: 7}, quota)
}

func TestService_UpdateUserQuota(t *testing.T) {
	repo := newFakeRepo(&User{ID: "u1", Email: "a@x.io", Role: RoleUser, MaxProjects: 10})
	svc := NewService(repo, Quota{})

	two := 2
	u, err := svc.UpdateUserQuota(context.Background(), "u1", UpdateUserQuotaRequest{MaxProjects: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, u.MaxProjects)

	negative := -1
	_, err = svc.UpdateUserQuota(context.Background(), "u1", UpdateUserQuotaRequest{MaxMembersPerProject: &negative})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateUserQuota(context.Background(), "missing", UpdateUserQuotaRequest{MaxProjects: &two})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_UpdateUserRoleBumpsTokenVersion(t *testing.T) {
	repo := newFakeRepo(&User{ID: "u1", Email: "a@x.io", Role: RoleUser})
	svc := NewService(repo, Quota{})

	u, err := svc.UpdateUserRole(context.Background(), "u1", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.Equal(t, 1, repo.users["u1"].TokenVersion)

	_, err = svc.UpdateUserRole(context.Background(), "u1", "superuser")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestService_CanDeleteUser(t *testing.T) {
	repo := newFakeRepo(
		&User{ID: "admin", Email: "admin@x.io", Role: RoleAdmin},
		&User{ID: "other-admin", Email: "admin2@x.io", Role: RoleAdmin},
		&User{ID: "plain", Email: "plain@x.io", Role: RoleUser},
	)
	svc := NewService(repo, Quota{})
	ctx := context.Background()

	assert.NoError(t, svc.CanDeleteUser(ctx, "admin", "plain"))
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "admin", "admin"), ErrCannotDeleteSelf)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "admin", "other-admin"), ErrCannotDeleteAdmin)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "admin", "other-admin"), core.ErrForbidden)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "plain", "admin"), core.ErrForbidden)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "admin", "ghost"), core.ErrNotFound)
}

func TestService_DeleteMeIsSoftAndDeleteUserIsHard(t *testing.T) {
	repo := newFakeRepo(
		&User{ID: "u1", Email: "a@x.io"},
		&User{ID: "u2", Email: "b@x.io"},
	)
	svc := NewService(repo, Quota{})
	ctx := context.Background()

	require.NoError(t, svc.DeleteMe(ctx, "u1"))
	require.Contains(t, repo.users, "u1")
	_, err := svc.GetMe(ctx, "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, svc.DeleteUser(ctx, "u2"))
	assert.NotContains(t, repo.users, "u2")

	assert.ErrorIs(t, svc.DeleteMe(ctx, ""), core.ErrUnauthorized)
}

func TestService_GetUsersSkipsMissing(t *testing.T) {
	repo := newFakeRepo(&User{ID: "u1", Email: "a@x.io"}, &User{ID: "u2", Email: "b@x.io"})
	svc := NewService(repo, Quota{})

	users, err := svc.GetUsers(context.Background(), []string{"u1", "ghost", "u2"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "b@x.io", users["u2"].Email)
}

func TestService_PromoteByEmail(t *testing.T) {
	repo := newFakeRepo(&User{ID: "u1", Email: "ops@x.io", Role: RoleUser})
	svc := NewService(repo, Quota{})

	u, err := svc.PromoteByEmail(context.Background(), " OPS@x.io ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
}
