// AngelaMos | 2026
// entity.go

package note

import (
	"time"
)

type Note struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Color     string    `db:"color"`
	Pinned    bool      `db:"pinned"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ListParams struct {
	Search string
	Offset int
	Limit  int
}
