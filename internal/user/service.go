// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/auth"
	"github.com/carterperez-dev/taskboard/internal/core"
)

var (
	ErrCannotDeleteSelf  = fmt.Errorf("delete user: target is the requester: %w", core.ErrForbidden)
	ErrCannotDeleteAdmin = fmt.Errorf("delete user: target is an admin: %w", core.ErrForbidden)
)

type Service struct {
	repo     Repository
	defaults Quota
}

func NewService(repo Repository, defaults Quota) *Service {
	return &Service{repo: repo, defaults: defaults}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:                   uuid.New().String(),
		Email:                strings.ToLower(email),
		PasswordHash:         passwordHash,
		Name:                 name,
		Role:                 RoleUser,
		MaxProjects:          s.defaults.MaxProjects,
		MaxMembersPerProject: s.defaults.MaxMembersPerProject,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// GetUsers returns the users with the given ids keyed by id. Missing or
// deleted users are absent from the map.
func (s *Service) GetUsers(
	ctx context.Context,
	ids []string,
) (map[string]*User, error) {
	users, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

// GetQuota returns the resource limits configured for the account.
func (s *Service) GetQuota(ctx context.Context, userID string) (Quota, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Quota{}, err
	}
	return user.Quota(), nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	// role is carried in access tokens; force re-issue
	if err := s.repo.IncrementTokenVersion(ctx, id); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserQuota(
	ctx context.Context,
	id string,
	req UpdateUserQuotaRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.MaxProjects != nil {
		if *req.MaxProjects < 0 {
			return nil, fmt.Errorf("update quota: negative max_projects: %w", core.ErrInvalidInput)
		}
		user.MaxProjects = *req.MaxProjects
	}
	if req.MaxMembersPerProject != nil {
		if *req.MaxMembersPerProject < 0 {
			return nil, fmt.Errorf("update quota: negative max_members_per_project: %w", core.ErrInvalidInput)
		}
		user.MaxMembersPerProject = *req.MaxMembersPerProject
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.HardDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	filter Filter,
	page core.PageParams,
) ([]User, int, error) {
	if filter.Role != "" && filter.Role != RoleUser && filter.Role != RoleAdmin {
		return nil, 0, fmt.Errorf("list users: unknown role %q: %w", filter.Role, core.ErrInvalidInput)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter, page)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

// CanDeleteUser allows admins to delete non-admin accounts. Admins cannot
// delete themselves through the admin surface.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return ErrCannotDeleteSelf
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return ErrCannotDeleteAdmin
	}

	return nil
}

// PromoteByEmail grants the admin role; used by the operator CLI to
// bootstrap the first administrator.
func (s *Service) PromoteByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.UpdateUserRole(ctx, user.ID, RoleAdmin)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
