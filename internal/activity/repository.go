// AngelaMos | 2026
// repository.go

package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, log *Log) error
	ListByProject(ctx context.Context, projectID string, page core.PageParams) ([]Log, int, error)
	ListByUser(ctx context.Context, userID string, page core.PageParams) ([]Log, int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

const logColumns = `id, user_id, project_id, action, entity_type, entity_id, details, created_at`

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) Create(ctx context.Context, log *Log) error {
	query := `
		INSERT INTO activity_logs (id, user_id, project_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &log.CreatedAt, query,
		log.ID,
		log.UserID,
		log.ProjectID,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.Details,
	)
	if err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}

	return nil
}

func (r *repository) ListByProject(
	ctx context.Context,
	projectID string,
	page core.PageParams,
) ([]Log, int, error) {
	return r.list(ctx, "project_id", projectID, page)
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Log, int, error) {
	return r.list(ctx, "user_id", userID, page)
}

func (r *repository) list(
	ctx context.Context,
	column, value string,
	page core.PageParams,
) ([]Log, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM activity_logs WHERE ` + column + ` = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, value); err != nil {
		return nil, 0, fmt.Errorf("count activity by %s: %w", column, err)
	}

	query := `SELECT ` + logColumns + `
		FROM activity_logs
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var logs []Log
	if err := r.db.SelectContext(ctx, &logs, query, value, page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list activity by %s: %w", column, err)
	}

	return logs, total, nil
}

func (r *repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete activity before cutoff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete activity before cutoff: %w", err)
	}

	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM activity_logs`); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

func (r *repository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return core.InTxWithOptions(ctx, r.conn, opts, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}
