// AngelaMos | 2026
// dto.go

package calendar

import (
	"time"
)

type CreateEventRequest struct {
	ProjectID   *string   `json:"project_id,omitempty" validate:"omitempty,uuid"`
	Title       string    `json:"title"                validate:"required,min=1,max=200"`
	Description string    `json:"description"          validate:"max=5000"`
	Location    string    `json:"location"             validate:"max=300"`
	StartsAt    time.Time `json:"starts_at"            validate:"required"`
	EndsAt      time.Time `json:"ends_at"              validate:"required"`
	AllDay      bool      `json:"all_day"`
}

type UpdateEventRequest struct {
	ProjectID    *string    `json:"project_id,omitempty"  validate:"omitempty,uuid"`
	ClearProject bool       `json:"clear_project,omitempty"`
	Title        *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location     *string    `json:"location,omitempty"    validate:"omitempty,max=300"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	AllDay       *bool      `json:"all_day,omitempty"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	ProjectID   *string   `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemResponse struct {
	Kind      string     `json:"kind"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ProjectID *string    `json:"project_id,omitempty"`
	At        time.Time  `json:"at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	AllDay    bool       `json:"all_day"`
	Status    string     `json:"status,omitempty"`
}

func ToEventResponse(e *Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		AllDay:      e.AllDay,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToEventResponseList(events []Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i]))
	}
	return out
}

func ToItemResponseList(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResponse(it))
	}
	return out
}
