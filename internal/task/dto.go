// AngelaMos | 2026
// dto.go

package task

import (
	"time"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"                 validate:"required,min=1,max=300"`
	Description string     `json:"description"           validate:"max=10000"`
	Status      string     `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    string     `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *string    `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=300"`
	Description   *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	Status        *string    `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress done"`
	Priority      *string    `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID    *string    `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearAssignee bool       `json:"clear_assignee,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
}

type MoveTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		CreatedBy:   t.CreatedBy,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTaskResponseList(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	return out
}
