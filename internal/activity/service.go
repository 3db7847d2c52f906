// AngelaMos | 2026
// service.go

package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
)

// Recorder is the write side handed to the other domain services.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type Service struct {
	repo      Repository
	checker   *access.Checker
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	checker *access.Checker,
	retention time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		checker:   checker,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Record appends an entry. Failures are logged and swallowed so the
// operation being audited is never rolled back by its audit trail.
func (s *Service) Record(ctx context.Context, e Entry) {
	log := &Log{
		ID:         uuid.New().String(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
	}
	if e.UserID != "" {
		log.UserID = &e.UserID
	}
	if e.ProjectID != "" {
		log.ProjectID = &e.ProjectID
	}

	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.WarnContext(ctx, "activity record failed",
			"error", err,
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
		)
		core.SetSpanError(ctx, err)
	}
}

func (s *Service) ListForProject(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
	page core.PageParams,
) ([]Log, int, error) {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView); err != nil {
		return nil, 0, err
	}

	return s.repo.ListByProject(ctx, projectID, page)
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Log, int, error) {
	return s.repo.ListByUser(ctx, userID, page)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Prune deletes entries older than the retention window and returns how
// many were removed.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, fmt.Errorf("prune activity: non-positive retention: %w", core.ErrInvalidInput)
	}

	cutoff := s.now().Add(-s.retention)

	var deleted int64
	err := s.repo.InTx(ctx, func(tx Repository) error {
		n, err := tx.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}

	s.logger.InfoContext(ctx, "activity pruned",
		"deleted", deleted,
		"cutoff", cutoff,
	)

	return deleted, nil
}

var _ Recorder = (*Service)(nil)
