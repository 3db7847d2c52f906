// AngelaMos | 2026
// entity.go

package project

import (
	"time"
)

const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
	StatusCancelled  = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID          string     `db:"id"`
	OwnerID     string     `db:"owner_id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	StartDate   *time.Time `db:"start_date"`
	DueDate     *time.Time `db:"due_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Membership is a project as seen by one user, with that user's role.
type Membership struct {
	Project
	Role string `db:"role"`
}
