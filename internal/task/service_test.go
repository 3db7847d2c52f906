// AngelaMos | 2026
// service_test.go

package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/activity"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/realtime"
)

const (
	projectID  = "0a0a0a0a-0000-4000-8000-000000000001"
	ownerID    = "11111111-1111-1111-1111-111111111111"
	memberID   = "22222222-2222-2222-2222-222222222222"
	observerID = "33333333-3333-3333-3333-333333333333"
	strangerID = "44444444-4444-4444-4444-444444444444"
)

type fakeRepo struct {
	tasks map[string]*Task
}

func (f *fakeRepo) Create(_ context.Context, t *Task) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, pid, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.ProjectID != pid {
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, t *Task) error {
	t.UpdatedAt = time.Now()
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, pid, id string) error {
	t, ok := f.tasks[id]
	if !ok || t.ProjectID != pid {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, pid string, filter Filter) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.ProjectID != pid {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) ListDueForAssignee(_ context.Context, userID string, from, to time.Time) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID && t.DueDate != nil &&
			!t.DueDate.Before(from) && t.DueDate.Before(to) {
			out = append(out, *t)
		}
	}
	return out, nil
}

type owners map[string]string

func (o owners) GetOwnerID(_ context.Context, id string) (string, error) {
	if owner, ok := o[id]; ok {
		return owner, nil
	}
	return "", fmt.Errorf("get owner: %w", core.ErrNotFound)
}

type roles map[string]string

func (r roles) GetMemberRole(_ context.Context, pid, uid string) (string, error) {
	if role, ok := r[pid+"/"+uid]; ok {
		return role, nil
	}
	return "", core.ErrNotFound
}

type recorder struct{ entries []activity.Entry }

func (r *recorder) Record(_ context.Context, e activity.Entry) { r.entries = append(r.entries, e) }

type publisher struct{ events []realtime.Event }

func (p *publisher) Publish(_ context.Context, ev realtime.Event) { p.events = append(p.events, ev) }

type fixture struct {
	repo *fakeRepo
	rec  *recorder
	pub  *publisher
	svc  *Service
	now  time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo: &fakeRepo{tasks: map[string]*Task{}},
		rec:  &recorder{},
		pub:  &publisher{},
		now:  time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC),
	}
	checker := access.NewChecker(
		owners{projectID: ownerID},
		roles{
			projectID + "/" + memberID:   access.RoleMember,
			projectID + "/" + observerID: access.RoleObserver,
		},
	)
	f.svc = NewService(f.repo, checker, f.rec, f.pub)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) create(t *testing.T, req CreateTaskRequest) *Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), projectID, memberID, false, req)
	require.NoError(t, err)
	return task
}

func TestCreate_DefaultsRecordsAndPublishes(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: " Ship it "})

	assert.Equal(t, "Ship it", task.Title)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, memberID, task.CreatedBy)
	assert.Nil(t, task.CompletedAt)

	require.Len(t, f.rec.entries, 1)
	assert.Equal(t, activity.ActionCreated, f.rec.entries[0].Action)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.EventTaskCreated, f.pub.events[0].Type)
	assert.Equal(t, projectID, f.pub.events[0].ProjectID)
}

func TestCreate_DoneSetsCompletedAt(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: "Already", Status: StatusDone})
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, f.now, *task.CompletedAt)
}

func TestCreate_AssigneeMustBeMember(t *testing.T) {
	f := newFixture()
	stranger := strangerID
	owner := ownerID

	_, err := f.svc.Create(context.Background(), projectID, memberID, false,
		CreateTaskRequest{Title: "x", AssigneeID: &stranger})
	assert.ErrorIs(t, err, ErrAssigneeNotMember)

	task, err := f.svc.Create(context.Background(), projectID, memberID, false,
		CreateTaskRequest{Title: "x", AssigneeID: &owner})
	require.NoError(t, err)
	assert.Equal(t, ownerID, *task.AssigneeID)
}

func TestPermissions_ObserverReadOnlyStrangerNotFound(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: "t"})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, projectID, observerID, false, CreateTaskRequest{Title: "nope"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.Move(ctx, projectID, task.ID, observerID, false, StatusDone)
	assert.ErrorIs(t, err, core.ErrForbidden)

	assert.ErrorIs(t, f.svc.Delete(ctx, projectID, task.ID, observerID, false), core.ErrForbidden)

	got, err := f.svc.Get(ctx, projectID, task.ID, observerID, false)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = f.svc.Get(ctx, projectID, task.ID, strangerID, false)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.List(ctx, projectID, strangerID, true, Filter{})
	assert.NoError(t, err)
}

func TestMove_TracksCompletion(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: "t"})
	ctx := context.Background()

	moved, err := f.svc.Move(ctx, projectID, task.ID, memberID, false, StatusDone)
	require.NoError(t, err)
	require.NotNil(t, moved.CompletedAt)

	moved, err = f.svc.Move(ctx, projectID, task.ID, memberID, false, StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, moved.CompletedAt)
	assert.Equal(t, StatusInProgress, moved.Status)

	before := len(f.pub.events)
	_, err = f.svc.Move(ctx, projectID, task.ID, memberID, false, StatusInProgress)
	require.NoError(t, err)
	assert.Len(t, f.pub.events, before, "no-op move publishes nothing")

	last := f.rec.entries[len(f.rec.entries)-1]
	assert.Equal(t, activity.ActionStatusChanged, last.Action)
}

func TestUpdate_ClearsAndSets(t *testing.T) {
	f := newFixture()
	due := f.now.Add(48 * time.Hour)
	member := memberID
	task := f.create(t, CreateTaskRequest{Title: "t", DueDate: &due, AssigneeID: &member})

	priority := PriorityUrgent
	updated, err := f.svc.Update(context.Background(), projectID, task.ID, ownerID, false, UpdateTaskRequest{
		Priority:      &priority,
		ClearAssignee: true,
		ClearDueDate:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, updated.Priority)
	assert.Nil(t, updated.AssigneeID)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, realtime.EventTaskUpdated, f.pub.events[len(f.pub.events)-1].Type)
}

func TestDelete_PublishesAndMissingIsNotFound(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: "t"})
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, projectID, task.ID, memberID, false))
	assert.Equal(t, realtime.EventTaskDeleted, f.pub.events[len(f.pub.events)-1].Type)

	assert.ErrorIs(t, f.svc.Delete(ctx, projectID, task.ID, memberID, false), core.ErrNotFound)
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	assert.True(t, (&Task{Status: StatusTodo, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusDone, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo}).IsOverdue(now))
}
