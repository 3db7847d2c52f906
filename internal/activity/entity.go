// AngelaMos | 2026
// entity.go

package activity

import (
	"time"
)

const (
	EntityProject    = "project"
	EntityTask       = "task"
	EntityMember     = "member"
	EntityInvitation = "invitation"
	EntityUser       = "user"
)

const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
	ActionInvited       = "invited"
	ActionJoined        = "joined"
	ActionDeclined      = "declined"
	ActionCancelled     = "cancelled"
	ActionRemoved       = "removed"
	ActionLeft          = "left"
	ActionRoleChanged   = "role_changed"
)

type Log struct {
	ID         string    `db:"id"`
	UserID     *string   `db:"user_id"`
	ProjectID  *string   `db:"project_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"`
	EntityID   string    `db:"entity_id"`
	Details    string    `db:"details"`
	CreatedAt  time.Time `db:"created_at"`
}

// Entry is what callers hand to Record. ProjectID is empty for entries not
// scoped to a project.
type Entry struct {
	UserID     string
	ProjectID  string
	Action     string
	EntityType string
	EntityID   string
	Details    string
}
