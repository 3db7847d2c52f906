// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty"       validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=1000"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=500"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserQuotaRequest struct {
	MaxProjects          *int `json:"max_projects,omitempty"            validate:"omitempty,gte=0,lte=10000"`
	MaxMembersPerProject *int `json:"max_members_per_project,omitempty" validate:"omitempty,gte=0,lte=10000"`
}

type UserResponse struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Name                 string    `json:"name"`
	Bio                  string    `json:"bio"`
	AvatarURL            string    `json:"avatar_url"`
	Role                 string    `json:"role"`
	MaxProjects          int       `json:"max_projects"`
	MaxMembersPerProject int       `json:"max_members_per_project"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Filter narrows the admin user listing. Empty fields match everything.
type Filter struct {
	Search string
	Role   string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		Bio:                  u.Bio,
		AvatarURL:            u.AvatarURL,
		Role:                 u.Role,
		MaxProjects:          u.MaxProjects,
		MaxMembersPerProject: u.MaxMembersPerProject,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
