// AngelaMos | 2026
// entity.go

package report

import (
	"time"
)

// Bucket is one GROUP BY row.
type Bucket struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

type TaskBucket struct {
	Status     string  `db:"status"`
	Priority   string  `db:"priority"`
	AssigneeID *string `db:"assignee_id"`
	Count      int     `db:"count"`
}

type Dashboard struct {
	OwnedProjects      map[string]int
	MemberProjects     map[string]int
	AssignedByStatus   map[string]int
	AssignedByPriority map[string]int
	OverdueAssigned    int
	PlannerByState     map[string]int
	Notes              int
	GeneratedAt        time.Time
}

type ProjectReport struct {
	ProjectID         string
	TotalTasks        int
	ByStatus          map[string]int
	ByPriority        map[string]int
	ByAssignee        map[string]int
	CompletionPercent float64
	Overdue           int
	GeneratedAt       time.Time
}

type SystemTotals struct {
	Users          int `db:"users"`
	Admins         int `db:"admins"`
	Projects       int `db:"projects"`
	Tasks          int `db:"tasks"`
	PlannerTasks   int `db:"planner_tasks"`
	Notes          int `db:"notes"`
	ActivityLogs   int `db:"activity_logs"`
	PendingInvites int `db:"pending_invitations"`
}

type SystemOverview struct {
	SystemTotals
	ProjectsByStatus map[string]int
	TasksByStatus    map[string]int
	GeneratedAt      time.Time
}
