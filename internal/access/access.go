// AngelaMos | 2026
// access.go

package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/taskboard/internal/core"
)

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleMember   = "member"
	RoleObserver = "observer"
)

// Level orders the project roles; a higher level implies every lower one.
type Level int

const (
	LevelNone Level = iota
	LevelObserver
	LevelMember
	LevelManager
	LevelOwner
)

func LevelForRole(role string) Level {
	switch role {
	case RoleOwner:
		return LevelOwner
	case RoleManager:
		return LevelManager
	case RoleMember:
		return LevelMember
	case RoleObserver:
		return LevelObserver
	default:
		return LevelNone
	}
}

func ValidMemberRole(role string) bool {
	return role == RoleManager || role == RoleMember || role == RoleObserver
}

type Capability int

const (
	CapView Capability = iota
	CapEditTasks
	CapManageProject
	CapOwn
)

func (c Capability) String() string {
	switch c {
	case CapView:
		return "view"
	case CapEditTasks:
		return "edit tasks"
	case CapManageProject:
		return "manage project"
	case CapOwn:
		return "owner action"
	default:
		return "unknown"
	}
}

// Access is a caller's resolved relation to one project.
type Access struct {
	ProjectID string
	UserID    string
	OwnerID   string
	Role      string
	Level     Level
	Admin     bool
}

func (a Access) IsOwner() bool {
	return a.Level == LevelOwner
}

func (a Access) IsMember() bool {
	return a.Level > LevelNone
}

// Can reports whether the caller holds the capability. Admins who are not
// members get read-only visibility.
func (a Access) Can(c Capability) bool {
	switch c {
	case CapView:
		return a.Level >= LevelObserver || a.Admin
	case CapEditTasks:
		return a.Level >= LevelMember
	case CapManageProject:
		return a.Level >= LevelManager
	case CapOwn:
		return a.Level == LevelOwner
	default:
		return false
	}
}

type ProjectOwnerLookup interface {
	GetOwnerID(ctx context.Context, projectID string) (string, error)
}

type MembershipLookup interface {
	GetMemberRole(ctx context.Context, projectID, userID string) (string, error)
}

type Checker struct {
	projects ProjectOwnerLookup
	members  MembershipLookup
}

func NewChecker(projects ProjectOwnerLookup, members MembershipLookup) *Checker {
	return &Checker{projects: projects, members: members}
}

// Resolve computes the caller's access. Callers with no relation to the
// project get ErrNotFound so existence is not disclosed.
func (c *Checker) Resolve(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
) (Access, error) {
	ownerID, err := c.projects.GetOwnerID(ctx, projectID)
	if err != nil {
		return Access{}, fmt.Errorf("resolve access: %w", err)
	}

	a := Access{
		ProjectID: projectID,
		UserID:    userID,
		OwnerID:   ownerID,
		Admin:     isAdmin,
	}

	if ownerID == userID {
		a.Role = RoleOwner
		a.Level = LevelOwner
		return a, nil
	}

	role, err := c.members.GetMemberRole(ctx, projectID, userID)
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return Access{}, fmt.Errorf("resolve access: %w", err)
	default:
		a.Role = role
		a.Level = LevelForRole(role)
	}

	if !a.Can(CapView) {
		return Access{}, fmt.Errorf("resolve access: %w", core.ErrNotFound)
	}

	return a, nil
}

// Require resolves access and fails with ErrForbidden when the capability
// is missing.
func (c *Checker) Require(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
	capability Capability,
) (Access, error) {
	a, err := c.Resolve(ctx, projectID, userID, isAdmin)
	if err != nil {
		return Access{}, err
	}

	if !a.Can(capability) {
		return Access{}, fmt.Errorf(
			"%s on project %s: %w",
			capability,
			projectID,
			core.ErrForbidden,
		)
	}

	return a, nil
}
