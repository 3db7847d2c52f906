// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByHash(ctx context.Context, tokenHash string) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	Rotate(ctx context.Context, id, replacedByID string) error
	Revoke(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) (int64, error)
	RevokeUser(ctx context.Context, userID string) (int64, error)
	ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const sessionColumns = `
	id, user_id, token_hash, family_id, expires_at, created_at,
	rotated_at, replaced_by_id, revoked_at, user_agent, ip_address`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, token_hash, family_id, expires_at,
			user_agent, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &s.CreatedAt, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.FamilyID,
		s.ExpiresAt,
		s.UserAgent,
		s.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByHash(ctx context.Context, tokenHash string) (*Session, error) {
	return r.findOne(ctx, "token_hash", tokenHash)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	return r.findOne(ctx, "id", id)
}

func (r *repository) findOne(ctx context.Context, column, value string) (*Session, error) {
	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE ` + column + ` = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &s, nil
}

// Rotate marks a session as consumed by a refresh. Only the first rotation
// succeeds; a concurrent second refresh sees ErrNotFound.
func (r *repository) Rotate(ctx context.Context, id, replacedByID string) error {
	query := `
		UPDATE sessions
		SET rotated_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND rotated_at IS NULL`

	n, err := r.exec(ctx, query, id, replacedByID)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("rotate session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`

	n, err := r.exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RevokeFamily(ctx context.Context, familyID string) (int64, error) {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE family_id = $1 AND revoked_at IS NULL`

	n, err := r.exec(ctx, query, familyID)
	if err != nil {
		return 0, fmt.Errorf("revoke session family: %w", err)
	}
	return n, nil
}

func (r *repository) RevokeUser(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL`

	n, err := r.exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return n, nil
}

func (r *repository) ListActive(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]Session, error) {
	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND rotated_at IS NULL
			AND expires_at > $2
		ORDER BY created_at DESC`

	var sessions []Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID, now); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	return sessions, nil
}

func (r *repository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (r *repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
