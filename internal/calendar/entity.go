// AngelaMos | 2026
// entity.go

package calendar

import (
	"time"
)

type Event struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ProjectID   *string   `db:"project_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Location    string    `db:"location"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	AllDay      bool      `db:"all_day"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const (
	KindEvent   = "event"
	KindTask    = "task"
	KindPlanner = "planner"
)

// Item is one agenda entry. Events span StartsAt..EndsAt; tasks and
// planner items are placed at their due date.
type Item struct {
	Kind      string
	ID        string
	Title     string
	ProjectID *string
	At        time.Time
	EndsAt    *time.Time
	AllDay    bool
	Status    string
}
