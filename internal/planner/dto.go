// AngelaMos | 2026
// dto.go

package planner

import (
	"time"
)

type CreateTaskRequest struct {
	Title    string     `json:"title"               validate:"required,min=1,max=300"`
	Notes    string     `json:"notes"               validate:"max=10000"`
	ParentID *string    `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	State    *int       `json:"state,omitempty"     validate:"omitempty,gte=0,lte=3"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=10000"`
	State        *int       `json:"state,omitempty" validate:"omitempty,gte=0,lte=3"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
}

// ReparentRequest moves a task; a null parent_id moves it to the roots.
type ReparentRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type ReorderRequest struct {
	ParentID   *string  `json:"parent_id"   validate:"omitempty,uuid"`
	OrderedIDs []string `json:"ordered_ids" validate:"unique,dive,uuid"`
}

type TaskResponse struct {
	ID         string     `json:"id"`
	ParentID   *string    `json:"parent_id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	State      int        `json:"state"`
	StateName  string     `json:"state_name"`
	OrderIndex int        `json:"order_index"`
	DueDate    *time.Time `json:"due_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type NodeResponse struct {
	TaskResponse
	Children []NodeResponse `json:"children"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		ParentID:   t.ParentID,
		Title:      t.Title,
		Notes:      t.Notes,
		State:      t.State,
		StateName:  StateName(t.State),
		OrderIndex: t.OrderIndex,
		DueDate:    t.DueDate,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func ToTaskResponseList(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	return out
}

func ToTreeResponse(nodes []*Node) []NodeResponse {
	out := make([]NodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeResponse{
			TaskResponse: ToTaskResponse(&n.Task),
			Children:     ToTreeResponse(n.Children),
		})
	}
	return out
}
