// AngelaMos | 2026
// service_test.go

package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
)

type fakeRepo struct {
	owned, member  []Bucket
	assigned       []TaskBucket
	overdue        int
	planner        []Bucket
	notes          int
	projectTasks   []TaskBucket
	projectOverdue int
	totals         SystemTotals
	byStatus       []Bucket
	err            error
}

func (f *fakeRepo) OwnedProjectsByStatus(context.Context, string) ([]Bucket, error) {
	return f.owned, f.err
}

func (f *fakeRepo) MemberProjectsByStatus(context.Context, string) ([]Bucket, error) {
	return f.member, nil
}

func (f *fakeRepo) AssignedTasks(context.Context, string) ([]TaskBucket, error) {
	return f.assigned, nil
}

func (f *fakeRepo) OverdueAssigned(context.Context, string, time.Time) (int, error) {
	return f.overdue, nil
}

func (f *fakeRepo) PlannerByState(context.Context, string) ([]Bucket, error) {
	return f.planner, nil
}

func (f *fakeRepo) NoteCount(context.Context, string) (int, error) {
	return f.notes, nil
}

func (f *fakeRepo) ProjectTasks(context.Context, string) ([]TaskBucket, error) {
	return f.projectTasks, nil
}

func (f *fakeRepo) ProjectOverdue(context.Context, string, time.Time) (int, error) {
	return f.projectOverdue, nil
}

func (f *fakeRepo) Totals(context.Context) (SystemTotals, error) {
	return f.totals, f.err
}

func (f *fakeRepo) ProjectsByStatus(context.Context) ([]Bucket, error) {
	return f.byStatus, nil
}

func (f *fakeRepo) TasksByStatus(context.Context) ([]Bucket, error) {
	return []Bucket{{Key: "todo", Count: 4}}, nil
}

type owners map[string]string

func (o owners) GetOwnerID(_ context.Context, id string) (string, error) {
	if owner, ok := o[id]; ok {
		return owner, nil
	}
	return "", core.ErrNotFound
}

type roles map[string]string

func (r roles) GetMemberRole(_ context.Context, _, userID string) (string, error) {
	if role, ok := r[userID]; ok {
		return role, nil
	}
	return "", core.ErrNotFound
}

func newService(repo *fakeRepo) *Service {
	checker := access.NewChecker(owners{"p1": "owner"}, roles{"watcher": access.RoleObserver})
	svc := NewService(repo, checker)
	svc.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboard(t *testing.T) {
	alice := "alice"
	repo := &fakeRepo{
		owned:  []Bucket{{Key: "planning", Count: 2}},
		member: []Bucket{{Key: "in_progress", Count: 1}},
		assigned: []TaskBucket{
			{Status: "todo", Priority: "high", AssigneeID: &alice, Count: 3},
			{Status: "done", Priority: "high", AssigneeID: &alice, Count: 1},
			{Status: "todo", Priority: "low", AssigneeID: &alice, Count: 2},
		},
		overdue: 1,
		planner: []Bucket{{Key: "0", Count: 5}, {Key: "2", Count: 1}},
		notes:   7,
	}

	d, err := newService(repo).Dashboard(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, 2, d.OwnedProjects["planning"])
	assert.Equal(t, 1, d.MemberProjects["in_progress"])
	assert.Equal(t, 5, d.AssignedByStatus["todo"])
	assert.Equal(t, 1, d.AssignedByStatus["done"])
	assert.Equal(t, 0, d.AssignedByStatus["in_progress"])
	assert.Equal(t, 4, d.AssignedByPriority["high"])
	assert.Equal(t, 0, d.AssignedByPriority["urgent"])
	assert.Equal(t, 1, d.OverdueAssigned)
	assert.Equal(t, map[string]int{
		"pending":     5,
		"in_progress": 0,
		"completed":   1,
		"cancelled":   0,
	}, d.PlannerByState)
	assert.Equal(t, 7, d.Notes)
}

func TestDashboard_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := newService(&fakeRepo{err: boom}).Dashboard(context.Background(), "u")
	assert.ErrorIs(t, err, boom)
}

func TestProjectReport(t *testing.T) {
	bob := "bob"
	repo := &fakeRepo{
		projectTasks: []TaskBucket{
			{Status: "done", Priority: "medium", AssigneeID: &bob, Count: 1},
			{Status: "todo", Priority: "medium", Count: 1},
			{Status: "in_progress", Priority: "urgent", AssigneeID: &bob, Count: 1},
		},
		projectOverdue: 2,
	}
	svc := newService(repo)

	rep, err := svc.ProjectReport(context.Background(), "p1", "watcher", false)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.TotalTasks)
	assert.Equal(t, 2, rep.ByAssignee["bob"])
	assert.Equal(t, 1, rep.ByAssignee[unassigned])
	assert.Equal(t, 2, rep.ByPriority["medium"])
	assert.InDelta(t, 33.3, rep.CompletionPercent, 0.001)
	assert.Equal(t, 2, rep.Overdue)
}

func TestProjectReport_Access(t *testing.T) {
	svc := newService(&fakeRepo{})
	ctx := context.Background()

	_, err := svc.ProjectReport(ctx, "p1", "stranger", false)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.ProjectReport(ctx, "p1", "stranger", true)
	assert.NoError(t, err)

	rep, err := svc.ProjectReport(ctx, "p1", "owner", false)
	require.NoError(t, err)
	assert.Zero(t, rep.CompletionPercent)
}

func TestSystemOverview(t *testing.T) {
	repo := &fakeRepo{
		totals:   SystemTotals{Users: 10, Admins: 1, Projects: 3},
		byStatus: []Bucket{{Key: "planning", Count: 3}},
	}

	o, err := newService(repo).SystemOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, o.Users)
	assert.Equal(t, 3, o.ProjectsByStatus["planning"])
	assert.Equal(t, 4, o.TasksByStatus["todo"])
}

func TestPercent(t *testing.T) {
	assert.Zero(t, percent(0, 0))
	assert.Equal(t, 100.0, percent(4, 4))
	assert.Equal(t, 66.7, percent(2, 3))
}
