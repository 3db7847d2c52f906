// AngelaMos | 2026
// dto.go

package project

import (
	"time"
)

type CreateProjectRequest struct {
	Name        string     `json:"name"                  validate:"required,min=1,max=200"`
	Description string     `json:"description"           validate:"max=5000"`
	Status      string     `json:"status,omitempty"      validate:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateProjectRequest struct {
	Name           *string    `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status         *string    `json:"status,omitempty"      validate:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearStartDate bool       `json:"clear_start_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`
}

type ProjectResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	Role        string     `json:"role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToProjectResponse(p *Project, role string) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		Role:        role,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToMembershipResponseList(ms []Membership) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToProjectResponse(&ms[i].Project, ms[i].Role))
	}
	return out
}
