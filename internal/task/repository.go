// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, projectID, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, projectID, id string) error
	List(ctx context.Context, projectID string, filter Filter) ([]Task, error)
	ListDueForAssignee(ctx context.Context, userID string, from, to time.Time) ([]Task, error)
}

const taskColumns = `id, project_id, title, description, status, priority, assignee_id,
		       due_date, created_by, completed_at, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority,
		                   assignee_id, due_date, created_by, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.DueDate,
		t.CreatedBy,
		t.CompletedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create task: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, projectID, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND project_id = $2`

	var t Task
	err := r.db.GetContext(ctx, &t, query, id, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return &t, nil
}

func (r *repository) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6,
		    assignee_id = $7, due_date = $8, completed_at = $9, updated_at = NOW()
		WHERE id = $1 AND project_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.DueDate,
		t.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update task: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, projectID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND project_id = $2`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(ctx context.Context, projectID string, filter Filter) ([]Task, error) {
	var (
		conditions = []string{"project_id = $1"}
		args       = []any{projectID}
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.AssigneeID != "" {
		args = append(args, filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY
			CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
			due_date ASC NULLS LAST,
			created_at ASC`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListDueForAssignee(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE assignee_id = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date ASC`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}

	return tasks, nil
}
