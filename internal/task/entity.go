// AngelaMos | 2026
// entity.go

package task

import (
	"time"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Task struct {
	ID          string     `db:"id"`
	ProjectID   string     `db:"project_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	AssigneeID  *string    `db:"assignee_id"`
	DueDate     *time.Time `db:"due_date"`
	CreatedBy   string     `db:"created_by"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// SetStatus applies a status and keeps completed_at consistent with it.
func (t *Task) SetStatus(status string, now time.Time) {
	if status == StatusDone && t.Status != StatusDone {
		t.CompletedAt = &now
	}
	if status != StatusDone {
		t.CompletedAt = nil
	}
	t.Status = status
}

func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusDone && t.DueDate.Before(now)
}

type Filter struct {
	Status     string
	Priority   string
	AssigneeID string
}
