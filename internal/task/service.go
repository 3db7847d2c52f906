// AngelaMos | 2026
// service.go

package task

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
	"github.com/carterperez-dev/taskboard/internal/realtime"
)

var ErrAssigneeNotMember = errors.New("assignee is not a project member")

type Service struct {
	repo      Repository
	checker   *access.Checker
	activity  activity.Recorder
	publisher realtime.Publisher
	now       func() time.Time
}

func NewService(
	repo Repository,
	checker *access.Checker,
	recorder activity.Recorder,
	publisher realtime.Publisher,
) *Service {
	return &Service{
		repo:      repo,
		checker:   checker,
		activity:  recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) Create(
	ctx context.Context,
	projectID, actorID string,
	isAdmin bool,
	req CreateTaskRequest,
) (*Task, error) {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapEditTasks); err != nil {
		return nil, err
	}

	if err := s.checkAssignee(ctx, projectID, req.AssigneeID); err != nil {
		return nil, err
	}

	t := &Task{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		CreatedBy:   actorID,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	t.SetStatus(status, s.now())

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.emit(ctx, actorID, t, activity.ActionCreated, realtime.EventTaskCreated)

	return t, nil
}

func (s *Service) List(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
	filter Filter,
) ([]Task, error) {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, projectID, filter)
}

func (s *Service) Get(
	ctx context.Context,
	projectID, taskID, userID string,
	isAdmin bool,
) (*Task, error) {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, projectID, taskID)
}

func (s *Service) Update(
	ctx context.Context,
	projectID, taskID, actorID string,
	isAdmin bool,
	req UpdateTaskRequest,
) (*Task, error) {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapEditTasks); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	if req.AssigneeID != nil {
		if err := s.checkAssignee(ctx, projectID, req.AssigneeID); err != nil {
			return nil, err
		}
		t.AssigneeID = req.AssigneeID
	}
	if req.ClearAssignee {
		t.AssigneeID = nil
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.ClearDueDate {
		t.DueDate = nil
	}
	if req.Status != nil {
		t.SetStatus(*req.Status, s.now())
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.emit(ctx, actorID, t, activity.ActionUpdated, realtime.EventTaskUpdated)

	return t, nil
}

// Move changes only the kanban column of a task.
func (s *Service) Move(
	ctx context.Context,
	projectID, taskID, actorID string,
	isAdmin bool,
	status string,
) (*Task, error) {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapEditTasks); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}

	if t.Status == status {
		return t, nil
	}

	t.SetStatus(status, s.now())

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.emit(ctx, actorID, t, activity.ActionStatusChanged, realtime.EventTaskUpdated)

	return t, nil
}

func (s *Service) Delete(
	ctx context.Context,
	projectID, taskID, actorID string,
	isAdmin bool,
) error {
	if _, err := s.checker.Require(ctx, projectID, actorID, isAdmin, access.CapEditTasks); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, projectID, taskID); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  projectID,
		Action:     activity.ActionDeleted,
		EntityType: activity.EntityTask,
		EntityID:   taskID,
	})
	s.publisher.Publish(ctx, realtime.Event{
		Type:      realtime.EventTaskDeleted,
		ProjectID: projectID,
		EntityID:  taskID,
		ActorID:   actorID,
	})

	return nil
}

// ListDueForAssignee returns tasks assigned to the user that fall due in
// [from, to).
func (s *Service) ListDueForAssignee(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]Task, error) {
	return s.repo.ListDueForAssignee(ctx, userID, from, to)
}

func (s *Service) checkAssignee(ctx context.Context, projectID string, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}

	a, err := s.checker.Resolve(ctx, projectID, *assigneeID, false)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("assign %s: %w", *assigneeID, ErrAssigneeNotMember)
	}
	if err != nil {
		return err
	}
	if !a.IsMember() {
		return fmt.Errorf("assign %s: %w", *assigneeID, ErrAssigneeNotMember)
	}

	return nil
}

func (s *Service) emit(ctx context.Context, actorID string, t *Task, action, event string) {
	s.activity.Record(ctx, activity.Entry{
		UserID:     actorID,
		ProjectID:  t.ProjectID,
		Action:     action,
		EntityType: activity.EntityTask,
		EntityID:   t.ID,
		Details:    t.Title,
	})
	s.publisher.Publish(ctx, realtime.Event{
		Type:       event,
		ProjectID:  t.ProjectID,
		EntityID:   t.ID,
		ActorID:    actorID,
		Payload:    ToTaskResponse(t),
		OccurredAt: t.UpdatedAt,
	})
}
