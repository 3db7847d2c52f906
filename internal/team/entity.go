// AngelaMos | 2026
// entity.go

package team

import (
	"time"
)

const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationDeclined  = "declined"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

type Member struct {
	ProjectID string    `db:"project_id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	JoinedAt  time.Time `db:"joined_at"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
}

type Invitation struct {
	ID          string     `db:"id"`
	ProjectID   string     `db:"project_id"`
	Email       string     `db:"email"`
	Role        string     `db:"role"`
	TokenHash   string     `db:"token_hash"`
	Status      string     `db:"status"`
	InvitedBy   string     `db:"invited_by"`
	ExpiresAt   time.Time  `db:"expires_at"`
	RespondedAt *time.Time `db:"responded_at"`
	CreatedAt   time.Time  `db:"created_at"`
	ProjectName string     `db:"project_name"`
}

func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

func (i *Invitation) IsExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
