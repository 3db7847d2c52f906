// AngelaMos | 2026
// repository.go

package team

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
	GetMemberRole(ctx context.Context, projectID, userID string) (string, error)
	ListMembers(ctx context.Context, projectID string) ([]Member, error)
	AddMember(ctx context.Context, m *Member) error
	UpdateMemberRole(ctx context.Context, projectID, userID, role string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	CountMembers(ctx context.Context, projectID string) (int, error)
	LockProject(ctx context.Context, projectID string) error

	CreateInvitation(ctx context.Context, inv *Invitation) error
	GetInvitation(ctx context.Context, id string) (*Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	ListInvitations(ctx context.Context, projectID string) ([]Invitation, error)
	ListPendingForEmail(ctx context.Context, email string, now time.Time) ([]Invitation, error)
	CountPendingInvitations(ctx context.Context, projectID string, now time.Time) (int, error)
	SetInvitationStatus(ctx context.Context, id, status string, at time.Time) error

	InTx(ctx context.Context, fn func(Repository) error) error
}

const invitationColumns = `i.id, i.project_id, i.email, i.role, i.token_hash, i.status,
		       i.invited_by, i.expires_at, i.responded_at, i.created_at,
		       p.name AS project_name`

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) GetMemberRole(
	ctx context.Context,
	projectID, userID string,
) (string, error) {
	var role string
	err := r.db.GetContext(ctx, &role,
		`SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get member role: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get member role: %w", err)
	}

	return role, nil
}

func (r *repository) ListMembers(ctx context.Context, projectID string) ([]Member, error) {
	query := `
		SELECT m.project_id, m.user_id, m.role, m.joined_at, u.name, u.email
		FROM project_members m
		JOIN users u ON u.id = m.user_id AND u.deleted_at IS NULL
		WHERE m.project_id = $1
		ORDER BY m.joined_at`

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, projectID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *repository) AddMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING joined_at`

	err := r.db.GetContext(ctx, &m.JoinedAt, query, m.ProjectID, m.UserID, m.Role)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("add member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("add member: %w", err)
	}

	return nil
}

func (r *repository) UpdateMemberRole(
	ctx context.Context,
	projectID, userID, role string,
) error {
	return r.execOne(ctx, "update member role",
		`UPDATE project_members SET role = $3 WHERE project_id = $1 AND user_id = $2`,
		projectID, userID, role)
}

func (r *repository) RemoveMember(ctx context.Context, projectID, userID string) error {
	return r.execOne(ctx, "remove member",
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID)
}

func (r *repository) CountMembers(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// LockProject holds the project row until the surrounding transaction
// ends, serializing membership changes that are checked against the quota.
func (r *repository) LockProject(ctx context.Context, projectID string) error {
	var id string
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM projects WHERE id = $1 FOR UPDATE`, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock project: %w", core.ErrNotFound)
		}
		return fmt.Errorf("lock project: %w", err)
	}
	return nil
}

func (r *repository) CreateInvitation(ctx context.Context, inv *Invitation) error {
	query := `
		INSERT INTO project_invitations
			(id, project_id, email, role, token_hash, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &inv.CreatedAt, query,
		inv.ID,
		inv.ProjectID,
		inv.Email,
		inv.Role,
		inv.TokenHash,
		inv.Status,
		inv.InvitedBy,
		inv.ExpiresAt,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create invitation: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

func (r *repository) GetInvitation(ctx context.Context, id string) (*Invitation, error) {
	return r.getInvitation(ctx, `i.id = $1`, id)
}

func (r *repository) GetInvitationByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*Invitation, error) {
	return r.getInvitation(ctx, `i.token_hash = $1`, tokenHash)
}

func (r *repository) getInvitation(
	ctx context.Context,
	where string,
	arg string,
) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM project_invitations i
		JOIN projects p ON p.id = i.project_id
		WHERE ` + where

	var inv Invitation
	err := r.db.GetContext(ctx, &inv, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invitation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	return &inv, nil
}

func (r *repository) ListInvitations(ctx context.Context, projectID string) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM project_invitations i
		JOIN projects p ON p.id = i.project_id
		WHERE i.project_id = $1
		ORDER BY i.created_at DESC`

	var out []Invitation
	if err := r.db.SelectContext(ctx, &out, query, projectID); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	return out, nil
}

func (r *repository) ListPendingForEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM project_invitations i
		JOIN projects p ON p.id = i.project_id
		WHERE i.email = $1 AND i.status = 'pending' AND i.expires_at > $2
		ORDER BY i.created_at DESC`

	var out []Invitation
	if err := r.db.SelectContext(ctx, &out, query, email, now); err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}

	return out, nil
}

func (r *repository) CountPendingInvitations(
	ctx context.Context,
	projectID string,
	now time.Time,
) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM project_invitations
		WHERE project_id = $1 AND status = 'pending' AND expires_at > $2`,
		projectID, now)
	if err != nil {
		return 0, fmt.Errorf("count pending invitations: %w", err)
	}
	return n, nil
}

// SetInvitationStatus moves a pending invitation to a terminal status.
// Invitations that already left pending report ErrConflict.
func (r *repository) SetInvitationStatus(
	ctx context.Context,
	id, status string,
	at time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE project_invitations
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'`,
		id, status, at)
	if err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set invitation status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set invitation status: %w", core.ErrConflict)
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

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
