// AngelaMos | 2026
// repository.go

package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, userID, id string) (*Task, error)
	GetParentID(ctx context.Context, userID, id string) (*string, error)
	CountSiblings(ctx context.Context, userID string, parentID *string) (int, error)
	ListSiblings(ctx context.Context, userID string, parentID *string) ([]Task, error)
	ListChildIDs(ctx context.Context, userID, parentID string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	ListDue(ctx context.Context, userID string, from, to time.Time) ([]Task, error)
	Update(ctx context.Context, t *Task) error
	SetOrderIndex(ctx context.Context, userID, id string, index int) error
	DeleteIDs(ctx context.Context, userID string, ids []string) (int64, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

const taskColumns = `id, user_id, parent_id, title, notes, state, order_index,
		       due_date, created_at, updated_at`

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO planner_tasks (id, user_id, parent_id, title, notes, state, order_index, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID,
		t.UserID,
		t.ParentID,
		t.Title,
		t.Notes,
		t.State,
		t.OrderIndex,
		t.DueDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create planner task: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM planner_tasks
		WHERE id = $1 AND user_id = $2`

	var t Task
	err := r.db.GetContext(ctx, &t, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get planner task: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get planner task: %w", err)
	}

	return &t, nil
}

func (r *repository) GetParentID(ctx context.Context, userID, id string) (*string, error) {
	var parentID *string
	err := r.db.GetContext(ctx, &parentID,
		`SELECT parent_id FROM planner_tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get planner parent: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get planner parent: %w", err)
	}

	return parentID, nil
}

func (r *repository) CountSiblings(
	ctx context.Context,
	userID string,
	parentID *string,
) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM planner_tasks
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2`,
		userID, parentID)
	if err != nil {
		return 0, fmt.Errorf("count planner siblings: %w", err)
	}
	return n, nil
}

func (r *repository) ListSiblings(
	ctx context.Context,
	userID string,
	parentID *string,
) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM planner_tasks
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY order_index, created_at, id`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, parentID); err != nil {
		return nil, fmt.Errorf("list planner siblings: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListChildIDs(ctx context.Context, userID, parentID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM planner_tasks WHERE user_id = $1 AND parent_id = $2`,
		userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list planner children: %w", err)
	}
	return ids, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM planner_tasks
		WHERE user_id = $1
		ORDER BY order_index, created_at, id`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list planner tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListDue(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM planner_tasks
		WHERE user_id = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date`

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list due planner tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE planner_tasks
		SET parent_id = $3, title = $4, notes = $5, state = $6,
		    order_index = $7, due_date = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.UserID,
		t.ParentID,
		t.Title,
		t.Notes,
		t.State,
		t.OrderIndex,
		t.DueDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update planner task: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update planner task: %w", err)
	}

	return nil
}

func (r *repository) SetOrderIndex(ctx context.Context, userID, id string, index int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE planner_tasks SET order_index = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		id, userID, index)
	if err != nil {
		return fmt.Errorf("set planner order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set planner order: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set planner order: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteIDs(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(
		`DELETE FROM planner_tasks WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete planner tasks: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete planner tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete planner tasks: %w", err)
	}

	return rows, nil
}

func (r *repository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}
