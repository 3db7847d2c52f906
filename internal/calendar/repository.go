// AngelaMos | 2026
// repository.go

package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, userID, id string) (*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, userID, id string) error
	ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]Event, error)
}

const eventColumns = `id, user_id, project_id, title, description, location,
		       starts_at, ends_at, all_day, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO calendar_events (id, user_id, project_id, title, description,
		                             location, starts_at, ends_at, all_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		e.ID,
		e.UserID,
		e.ProjectID,
		e.Title,
		e.Description,
		e.Location,
		e.StartsAt,
		e.EndsAt,
		e.AllDay,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create event: project: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1 AND user_id = $2`

	var e Event
	err := r.db.GetContext(ctx, &e, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &e, nil
}

func (r *repository) Update(ctx context.Context, e *Event) error {
	query := `
		UPDATE calendar_events
		SET project_id = $3, title = $4, description = $5, location = $6,
		    starts_at = $7, ends_at = $8, all_day = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &e.UpdatedAt, query,
		e.ID,
		e.UserID,
		e.ProjectID,
		e.Title,
		e.Description,
		e.Location,
		e.StartsAt,
		e.EndsAt,
		e.AllDay,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update event: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM calendar_events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete event: %w", core.ErrNotFound)
	}

	return nil
}

// ListOverlapping returns events that intersect [from, to).
func (r *repository) ListOverlapping(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE user_id = $1 AND starts_at < $3 AND ends_at >= $2
		ORDER BY starts_at`

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}
