// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/activity"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/user"
)

var ErrHasTasks = errors.New("project still has tasks")

type QuotaProvider interface {
	GetQuota(ctx context.Context, userID string) (user.Quota, error)
}

type Service struct {
	repo     Repository
	checker  *access.Checker
	quotas   QuotaProvider
	activity activity.Recorder
}

func NewService(
	repo Repository,
	checker *access.Checker,
	quotas QuotaProvider,
	recorder activity.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		checker:  checker,
		quotas:   quotas,
		activity: recorder,
	}
}

func (s *Service) Create(
	ctx context.Context,
	ownerID string,
	req CreateProjectRequest,
) (*Project, error) {
	if err := validateDates(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusPlanning
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("create project: unknown status %q: %w", status, core.ErrInvalidInput)
	}

	quota, err := s.quotas.GetQuota(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	p := &Project{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      status,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockOwner(ctx, ownerID); err != nil {
			return err
		}
		owned, err := tx.CountOwned(ctx, ownerID)
		if err != nil {
			return err
		}
		if owned >= quota.MaxProjects {
			return fmt.Errorf(
				"project limit of %d reached: %w",
				quota.MaxProjects,
				core.ErrQuotaExceeded,
			)
		}
		return tx.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     ownerID,
		ProjectID:  p.ID,
		Action:     activity.ActionCreated,
		EntityType: activity.EntityProject,
		EntityID:   p.ID,
		Details:    p.Name,
	})

	return p, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Membership, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Get(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
) (*Project, access.Access, error) {
	a, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView)
	if err != nil {
		return nil, access.Access{}, err
	}

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, access.Access{}, err
	}

	return p, a, nil
}

func (s *Service) Update(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
	req UpdateProjectRequest,
) (*Project, error) {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapManageProject); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("update project: unknown status %q: %w", *req.Status, core.ErrInvalidInput)
		}
		p.Status = *req.Status
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.ClearStartDate {
		p.StartDate = nil
	}
	if req.DueDate != nil {
		p.DueDate = req.DueDate
	}
	if req.ClearDueDate {
		p.DueDate = nil
	}

	if err := validateDates(p.StartDate, p.DueDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     userID,
		ProjectID:  p.ID,
		Action:     activity.ActionUpdated,
		EntityType: activity.EntityProject,
		EntityID:   p.ID,
	})

	return p, nil
}

// Delete removes the project with its members and invitations. A project
// that still has tasks is only removed when force is set.
func (s *Service) Delete(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
	force bool,
) error {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapOwn); err != nil {
		return err
	}

	if !force {
		n, err := s.repo.CountTasks(ctx, projectID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("delete project with %d tasks: %w", n, ErrHasTasks)
		}
	}

	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}

	// project-scoped rows cascade with the project, so the entry is
	// recorded against the user only
	s.activity.Record(ctx, activity.Entry{
		UserID:     userID,
		Action:     activity.ActionDeleted,
		EntityType: activity.EntityProject,
		EntityID:   projectID,
	})

	return nil
}

func validateDates(start, due *time.Time) error {
	if start != nil && due != nil && due.Before(*start) {
		return fmt.Errorf("due_date must not precede start_date: %w", core.ErrInvalidInput)
	}
	return nil
}
