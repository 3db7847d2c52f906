// AngelaMos | 2026
// dto.go

package team

import (
	"time"
)

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role"  validate:"required,oneof=manager member observer"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=manager member observer"`
}

type RespondRequest struct {
	Token string `json:"token" validate:"required,min=16,max=128"`
}

type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type InvitationResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name,omitempty"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	InvitedBy   string     `json:"invited_by"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToMemberResponse(m *Member) MemberResponse {
	return MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

func ToMemberResponseList(members []Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, ToMemberResponse(&members[i]))
	}
	return out
}

func ToInvitationResponse(inv *Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          inv.ID,
		ProjectID:   inv.ProjectID,
		ProjectName: inv.ProjectName,
		Email:       inv.Email,
		Role:        inv.Role,
		Status:      inv.Status,
		InvitedBy:   inv.InvitedBy,
		ExpiresAt:   inv.ExpiresAt,
		RespondedAt: inv.RespondedAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func ToInvitationResponseList(invs []Invitation) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(invs))
	for i := range invs {
		out = append(out, ToInvitationResponse(&invs[i]))
	}
	return out
}
