// AngelaMos | 2026
// dto.go

package note

import (
	"time"
)

type CreateNoteRequest struct {
	Title   string `json:"title"   validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"max=20000"`
	Color   string `json:"color"   validate:"omitempty,max=32"`
	Pinned  bool   `json:"pinned"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"   validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty" validate:"omitempty,max=20000"`
	Color   *string `json:"color,omitempty"   validate:"omitempty,max=32"`
	Pinned  *bool   `json:"pinned,omitempty"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToNoteResponse(n *Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		Pinned:    n.Pinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func ToNoteResponseList(notes []Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, ToNoteResponse(&notes[i]))
	}
	return out
}
