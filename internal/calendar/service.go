// AngelaMos | 2026
// service.go

package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/planner"
	"github.com/carterperez-dev/taskboard/internal/task"
)

const MaxRange = 366 * 24 * time.Hour

type TaskSource interface {
	ListDueForAssignee(ctx context.Context, userID string, from, to time.Time) ([]task.Task, error)
}

type PlannerSource interface {
	ListDue(ctx context.Context, userID string, from, to time.Time) ([]planner.Task, error)
}

type Service struct {
	repo    Repository
	checker *access.Checker
	tasks   TaskSource
	planner PlannerSource
}

func NewService(
	repo Repository,
	checker *access.Checker,
	tasks TaskSource,
	planner PlannerSource,
) *Service {
	return &Service{
		repo:    repo,
		checker: checker,
		tasks:   tasks,
		planner: planner,
	}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	isAdmin bool,
	req CreateEventRequest,
) (*Event, error) {
	if err := validateSpan(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, userID, isAdmin, req.ProjectID); err != nil {
		return nil, err
	}

	e := &Event{
		ID:          uuid.New().String(),
		UserID:      userID,
		ProjectID:   req.ProjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Event, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) ListEvents(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Event, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	return s.repo.ListOverlapping(ctx, userID, from, to)
}

func (s *Service) Update(
	ctx context.Context,
	userID string,
	isAdmin bool,
	id string,
	req UpdateEventRequest,
) (*Event, error) {
	e, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		if err := s.checkProject(ctx, userID, isAdmin, req.ProjectID); err != nil {
			return nil, err
		}
		e.ProjectID = req.ProjectID
	}
	if req.ClearProject {
		e.ProjectID = nil
	}
	if req.Title != nil {
		e.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartsAt != nil {
		e.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		e.EndsAt = *req.EndsAt
	}
	if req.AllDay != nil {
		e.AllDay = *req.AllDay
	}

	if err := validateSpan(e.StartsAt, e.EndsAt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Agenda merges the user's events, the project tasks assigned to them and
// their planner tasks falling in [from, to), ordered by time.
func (s *Service) Agenda(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Item, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	events, err := s.repo.ListOverlapping(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListDueForAssignee(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("agenda tasks: %w", err)
	}

	plans, err := s.planner.ListDue(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("agenda planner: %w", err)
	}

	items := make([]Item, 0, len(events)+len(tasks)+len(plans))
	for _, e := range events {
		ends := e.EndsAt
		items = append(items, Item{
			Kind:      KindEvent,
			ID:        e.ID,
			Title:     e.Title,
			ProjectID: e.ProjectID,
			At:        e.StartsAt,
			EndsAt:    &ends,
			AllDay:    e.AllDay,
		})
	}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		projectID := t.ProjectID
		items = append(items, Item{
			Kind:      KindTask,
			ID:        t.ID,
			Title:     t.Title,
			ProjectID: &projectID,
			At:        *t.DueDate,
			Status:    t.Status,
		})
	}
	for _, p := range plans {
		if p.DueDate == nil {
			continue
		}
		items = append(items, Item{
			Kind:   KindPlanner,
			ID:     p.ID,
			Title:  p.Title,
			At:     *p.DueDate,
			Status: planner.StateName(p.State),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].At.Before(items[j].At)
	})

	return items, nil
}

func (s *Service) checkProject(
	ctx context.Context,
	userID string,
	isAdmin bool,
	projectID *string,
) error {
	if projectID == nil {
		return nil
	}
	_, err := s.checker.Require(ctx, *projectID, userID, isAdmin, access.CapView)
	return err
}

func validateSpan(starts, ends time.Time) error {
	if ends.Before(starts) {
		return fmt.Errorf("ends_at must not be before starts_at: %w", core.ErrInvalidInput)
	}
	return nil
}

func validateRange(from, to time.Time) error {
	if !to.After(from) {
		return fmt.Errorf("to must be after from: %w", core.ErrInvalidInput)
	}
	if to.Sub(from) > MaxRange {
		return fmt.Errorf("range may span at most 366 days: %w", core.ErrInvalidInput)
	}
	return nil
}
