// AngelaMos | 2026
// entity.go

package planner

import (
	"time"
)

const (
	StatePending    = 0
	StateInProgress = 1
	StateCompleted  = 2
	StateCancelled  = 3
)

func ValidState(s int) bool {
	return s >= StatePending && s <= StateCancelled
}

func StateName(s int) string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is one node of a user's planner forest. ParentID is nil for roots;
// siblings are ordered by OrderIndex.
type Task struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	ParentID   *string    `db:"parent_id"`
	Title      string     `db:"title"`
	Notes      string     `db:"notes"`
	State      int        `db:"state"`
	OrderIndex int        `db:"order_index"`
	DueDate    *time.Time `db:"due_date"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (t *Task) HasParent(parentID *string) bool {
	if t.ParentID == nil || parentID == nil {
		return t.ParentID == nil && parentID == nil
	}
	return *t.ParentID == *parentID
}
