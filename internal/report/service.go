// AngelaMos | 2026
// service.go

package report

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/planner"
	"github.com/carterperez-dev/taskboard/internal/task"
)

const unassigned = "unassigned"

type Service struct {
	repo    Repository
	checker *access.Checker
	now     func() time.Time
}

func NewService(repo Repository, checker *access.Checker) *Service {
	return &Service{
		repo:    repo,
		checker: checker,
		now:     time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	now := s.now()

	owned, err := s.repo.OwnedProjectsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	member, err := s.repo.MemberProjectsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.repo.AssignedTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.OverdueAssigned(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	states, err := s.repo.PlannerByState(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.NoteCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		OwnedProjects:      toMap(owned),
		MemberProjects:     toMap(member),
		AssignedByStatus:   zeroed(task.StatusTodo, task.StatusInProgress, task.StatusDone),
		AssignedByPriority: zeroed(task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityUrgent),
		OverdueAssigned:    overdue,
		PlannerByState:     make(map[string]int),
		Notes:              notes,
		GeneratedAt:        now,
	}

	for _, b := range assigned {
		d.AssignedByStatus[b.Status] += b.Count
		d.AssignedByPriority[b.Priority] += b.Count
	}

	for state := planner.StatePending; state <= planner.StateCancelled; state++ {
		d.PlannerByState[planner.StateName(state)] = 0
	}
	for _, b := range states {
		state, err := strconv.Atoi(b.Key)
		if err != nil {
			continue
		}
		d.PlannerByState[planner.StateName(state)] += b.Count
	}

	return d, nil
}

// ProjectReport aggregates a project's tasks. Any member may view it.
func (s *Service) ProjectReport(
	ctx context.Context,
	projectID, userID string,
	isAdmin bool,
) (*ProjectReport, error) {
	if _, err := s.checker.Require(ctx, projectID, userID, isAdmin, access.CapView); err != nil {
		return nil, err
	}

	now := s.now()

	buckets, err := s.repo.ProjectTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repo.ProjectOverdue(ctx, projectID, now)
	if err != nil {
		return nil, err
	}

	rep := &ProjectReport{
		ProjectID:   projectID,
		ByStatus:    zeroed(task.StatusTodo, task.StatusInProgress, task.StatusDone),
		ByPriority:  zeroed(task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityUrgent),
		ByAssignee:  make(map[string]int),
		Overdue:     overdue,
		GeneratedAt: now,
	}

	for _, b := range buckets {
		rep.TotalTasks += b.Count
		rep.ByStatus[b.Status] += b.Count
		rep.ByPriority[b.Priority] += b.Count

		assignee := unassigned
		if b.AssigneeID != nil {
			assignee = *b.AssigneeID
		}
		rep.ByAssignee[assignee] += b.Count
	}

	rep.CompletionPercent = percent(rep.ByStatus[task.StatusDone], rep.TotalTasks)

	return rep, nil
}

func (s *Service) SystemOverview(ctx context.Context) (*SystemOverview, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ProjectsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.TasksByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &SystemOverview{
		SystemTotals:     totals,
		ProjectsByStatus: toMap(projects),
		TasksByStatus:    toMap(tasks),
		GeneratedAt:      s.now(),
	}, nil
}

func toMap(buckets []Bucket) map[string]int {
	m := make(map[string]int, len(buckets))
	for _, b := range buckets {
		m[b.Key] += b.Count
	}
	return m
}

func zeroed(keys ...string) map[string]int {
	m := make(map[string]int, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}

// percent rounds to one decimal place.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
