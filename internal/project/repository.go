// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetOwnerID(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]Membership, error)
	CountOwned(ctx context.Context, ownerID string) (int, error)
	CountTasks(ctx context.Context, projectID string) (int, error)
	LockOwner(ctx context.Context, ownerID string) error

	InTx(ctx context.Context, fn func(Repository) error) error
}

const projectColumns = `p.id, p.owner_id, p.name, p.description, p.status,
		       p.start_date, p.due_date, p.created_at, p.updated_at`

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (id, owner_id, name, description, status, start_date, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Description,
		p.Status,
		p.StartDate,
		p.DueDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create project: owner: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`

	var p Project
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

func (r *repository) GetOwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.db.GetContext(ctx, &ownerID, `SELECT owner_id FROM projects WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get project owner: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get project owner: %w", err)
	}

	return ownerID, nil
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4,
		    start_date = $5, due_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &p.UpdatedAt, query,
		p.ID,
		p.Name,
		p.Description,
		p.Status,
		p.StartDate,
		p.DueDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete project: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListForUser(ctx context.Context, userID string) ([]Membership, error) {
	query := `
		SELECT ` + projectColumns + `, 'owner' AS role
		FROM projects p
		WHERE p.owner_id = $1
		UNION ALL
		SELECT ` + projectColumns + `, m.role
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY updated_at DESC`

	var out []Membership
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("list projects for user: %w", err)
	}

	return out, nil
}

func (r *repository) CountOwned(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("count owned projects: %w", err)
	}
	return n, nil
}

func (r *repository) CountTasks(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("count project tasks: %w", err)
	}
	return n, nil
}

// LockOwner holds the owner's user row until the surrounding transaction
// ends, so concurrent creates by one owner see each other's projects.
func (r *repository) LockOwner(ctx context.Context, ownerID string) error {
	var id string
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock owner: %w", core.ErrNotFound)
		}
		return fmt.Errorf("lock owner: %w", err)
	}
	return nil
}

func (r *repository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}
