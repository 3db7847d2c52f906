// AngelaMos | 2026
// repository.go

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	OwnedProjectsByStatus(ctx context.Context, userID string) ([]Bucket, error)
	MemberProjectsByStatus(ctx context.Context, userID string) ([]Bucket, error)
	AssignedTasks(ctx context.Context, userID string) ([]TaskBucket, error)
	OverdueAssigned(ctx context.Context, userID string, now time.Time) (int, error)
	PlannerByState(ctx context.Context, userID string) ([]Bucket, error)
	NoteCount(ctx context.Context, userID string) (int, error)
	ProjectTasks(ctx context.Context, projectID string) ([]TaskBucket, error)
	ProjectOverdue(ctx context.Context, projectID string, now time.Time) (int, error)
	Totals(ctx context.Context) (SystemTotals, error)
	ProjectsByStatus(ctx context.Context) ([]Bucket, error)
	TasksByStatus(ctx context.Context) ([]Bucket, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) buckets(ctx context.Context, op, query string, args ...any) ([]Bucket, error) {
	var out []Bucket
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *repository) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *repository) OwnedProjectsByStatus(ctx context.Context, userID string) ([]Bucket, error) {
	return r.buckets(ctx, "owned projects by status", `
		SELECT status AS key, COUNT(*) AS count
		FROM projects
		WHERE owner_id = $1
		GROUP BY status`, userID)
}

func (r *repository) MemberProjectsByStatus(ctx context.Context, userID string) ([]Bucket, error) {
	return r.buckets(ctx, "member projects by status", `
		SELECT p.status AS key, COUNT(*) AS count
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		GROUP BY p.status`, userID)
}

func (r *repository) AssignedTasks(ctx context.Context, userID string) ([]TaskBucket, error) {
	query := `
		SELECT status, priority, assignee_id, COUNT(*) AS count
		FROM tasks
		WHERE assignee_id = $1
		GROUP BY status, priority, assignee_id`

	var out []TaskBucket
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("assigned tasks: %w", err)
	}
	return out, nil
}

func (r *repository) OverdueAssigned(ctx context.Context, userID string, now time.Time) (int, error) {
	return r.count(ctx, "overdue assigned", `
		SELECT COUNT(*) FROM tasks
		WHERE assignee_id = $1 AND status <> 'done' AND due_date < $2`, userID, now)
}

func (r *repository) PlannerByState(ctx context.Context, userID string) ([]Bucket, error) {
	return r.buckets(ctx, "planner by state", `
		SELECT state::text AS key, COUNT(*) AS count
		FROM planner_tasks
		WHERE user_id = $1
		GROUP BY state`, userID)
}

func (r *repository) NoteCount(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, "note count", `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID)
}

func (r *repository) ProjectTasks(ctx context.Context, projectID string) ([]TaskBucket, error) {
	query := `
		SELECT status, priority, assignee_id, COUNT(*) AS count
		FROM tasks
		WHERE project_id = $1
		GROUP BY status, priority, assignee_id`

	var out []TaskBucket
	if err := r.db.SelectContext(ctx, &out, query, projectID); err != nil {
		return nil, fmt.Errorf("project tasks: %w", err)
	}
	return out, nil
}

func (r *repository) ProjectOverdue(ctx context.Context, projectID string, now time.Time) (int, error) {
	return r.count(ctx, "project overdue", `
		SELECT COUNT(*) FROM tasks
		WHERE project_id = $1 AND status <> 'done' AND due_date < $2`, projectID, now)
}

func (r *repository) Totals(ctx context.Context) (SystemTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL)                       AS users,
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND role = 'admin')    AS admins,
			(SELECT COUNT(*) FROM projects)                                             AS projects,
			(SELECT COUNT(*) FROM tasks)                                                AS tasks,
			(SELECT COUNT(*) FROM planner_tasks)                                        AS planner_tasks,
			(SELECT COUNT(*) FROM notes)                                                AS notes,
			(SELECT COUNT(*) FROM activity_logs)                                        AS activity_logs,
			(SELECT COUNT(*) FROM project_invitations WHERE status = 'pending')         AS pending_invitations`

	var t SystemTotals
	if err := r.db.GetContext(ctx, &t, query); err != nil {
		return SystemTotals{}, fmt.Errorf("system totals: %w", err)
	}
	return t, nil
}

func (r *repository) ProjectsByStatus(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, "projects by status",
		`SELECT status AS key, COUNT(*) AS count FROM projects GROUP BY status`)
}

func (r *repository) TasksByStatus(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, "tasks by status",
		`SELECT status AS key, COUNT(*) AS count FROM tasks GROUP BY status`)
}
