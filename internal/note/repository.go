// AngelaMos | 2026
// repository.go

package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, userID, id string) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, params ListParams) ([]Note, int, error)
	Count(ctx context.Context, userID string) (int, error)
}

const noteColumns = `id, user_id, title, content, color, pinned, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, color, pinned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Content,
		n.Color,
		n.Pinned,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`

	var n Note
	err := r.db.GetContext(ctx, &n, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get note: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &n, nil
}

func (r *repository) Update(ctx context.Context, n *Note) error {
	query := `
		UPDATE notes
		SET title = $3, content = $4, color = $5, pinned = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &n.UpdatedAt, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Content,
		n.Color,
		n.Pinned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update note: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete note: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Note, int, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}

	if params.Search != "" {
		where += ` AND (title ILIKE $2 OR content ILIKE $2)`
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notes `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notes %s
		ORDER BY pinned DESC, updated_at DESC
		LIMIT $%d OFFSET $%d`, noteColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var notes []Note
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	return notes, total, nil
}

func (r *repository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return n, nil
}
