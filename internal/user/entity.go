// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                   string     `db:"id"`
	Email                string     `db:"email"`
	PasswordHash         string     `db:"password_hash"`
	Name                 string     `db:"name"`
	Bio                  string     `db:"bio"`
	AvatarURL            string     `db:"avatar_url"`
	Role                 string     `db:"role"`
	MaxProjects          int        `db:"max_projects"`
	MaxMembersPerProject int        `db:"max_members_per_project"`
	TokenVersion         int        `db:"token_version"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
	DeletedAt            *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Quota is the per-account resource ceiling enforced by the project and
// team services.
type Quota struct {
	MaxProjects          int
	MaxMembersPerProject int
}

func (u *User) Quota() Quota {
	return Quota{
		MaxProjects:          u.MaxProjects,
		MaxMembersPerProject: u.MaxMembersPerProject,
	}
}
