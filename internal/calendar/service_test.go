// AngelaMos | 2026
// service_test.go

package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
	"github.com/carterperez-dev/taskboard/internal/planner"
	"github.com/carterperez-dev/taskboard/internal/task"
)

var base = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

type fakeRepo struct {
	events map[string]Event
}

func (f *fakeRepo) Create(_ context.Context, e *Event) error {
	f.events[e.ID] = *e
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, userID, id string) (*Event, error) {
	e, ok := f.events[id]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	return &e, nil
}

func (f *fakeRepo) Update(_ context.Context, e *Event) error {
	f.events[e.ID] = *e
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, id string) error {
	e, ok := f.events[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("delete event: %w", core.ErrNotFound)
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) ListOverlapping(_ context.Context, userID string, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		if e.UserID == userID && e.StartsAt.Before(to) && !e.EndsAt.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTasks []task.Task

func (f fakeTasks) ListDueForAssignee(_ context.Context, _ string, _, _ time.Time) ([]task.Task, error) {
	return f, nil
}

type fakePlanner []planner.Task

func (f fakePlanner) ListDue(_ context.Context, _ string, _, _ time.Time) ([]planner.Task, error) {
	return f, nil
}

type projectOwners map[string]string

func (p projectOwners) GetOwnerID(_ context.Context, id string) (string, error) {
	owner, ok := p[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return owner, nil
}

type noMembers struct{}

func (noMembers) GetMemberRole(context.Context, string, string) (string, error) {
	return "", core.ErrNotFound
}

func newService(tasks fakeTasks, plans fakePlanner) (*Service, *fakeRepo) {
	repo := &fakeRepo{events: make(map[string]Event)}
	checker := access.NewChecker(projectOwners{"p1": "u1"}, noMembers{})
	return NewService(repo, checker, tasks, plans), repo
}

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func TestAgenda_MergesAndSorts(t *testing.T) {
	taskDue := at(5)
	planDue := at(1)
	svc, _ := newService(
		fakeTasks{{ID: "t1", ProjectID: "p1", Title: "ship", Status: task.StatusTodo, DueDate: &taskDue}},
		fakePlanner{{ID: "pl1", Title: "plan", State: planner.StateInProgress, DueDate: &planDue}},
	)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", false, CreateEventRequest{
		Title:    "standup",
		StartsAt: at(3),
		EndsAt:   at(4),
	})
	require.NoError(t, err)

	items, err := svc.Agenda(ctx, "u1", base, at(24))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, KindPlanner, items[0].Kind)
	assert.Equal(t, "in_progress", items[0].Status)
	assert.Equal(t, KindEvent, items[1].Kind)
	require.NotNil(t, items[1].EndsAt)
	assert.Equal(t, at(4), *items[1].EndsAt)
	assert.Equal(t, KindTask, items[2].Kind)
	assert.Equal(t, "p1", *items[2].ProjectID)
}

func TestAgenda_RangeValidation(t *testing.T) {
	svc, _ := newService(nil, nil)
	ctx := context.Background()

	_, err := svc.Agenda(ctx, "u1", at(5), at(5))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Agenda(ctx, "u1", at(5), at(1))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Agenda(ctx, "u1", base, base.Add(MaxRange+time.Hour))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Agenda(ctx, "u1", base, base.Add(MaxRange))
	assert.NoError(t, err)
}

func TestCreate_RejectsInvertedSpan(t *testing.T) {
	svc, _ := newService(nil, nil)

	_, err := svc.Create(context.Background(), "u1", false, CreateEventRequest{
		Title:    "backwards",
		StartsAt: at(2),
		EndsAt:   at(1),
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreate_ProjectAccess(t *testing.T) {
	svc, _ := newService(nil, nil)
	ctx := context.Background()
	p1 := "p1"

	_, err := svc.Create(ctx, "u1", false, CreateEventRequest{
		ProjectID: &p1, Title: "review", StartsAt: at(1), EndsAt: at(2),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "stranger", false, CreateEventRequest{
		ProjectID: &p1, Title: "peek", StartsAt: at(1), EndsAt: at(2),
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdate_RevalidatesSpan(t *testing.T) {
	svc, repo := newService(nil, nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, "u1", false, CreateEventRequest{
		Title: "workshop", StartsAt: at(1), EndsAt: at(3),
	})
	require.NoError(t, err)

	early := at(0)
	_, err = svc.Update(ctx, "u1", false, e.ID, UpdateEventRequest{EndsAt: &early})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, at(3), repo.events[e.ID].EndsAt)

	later := at(6)
	got, err := svc.Update(ctx, "u1", false, e.ID, UpdateEventRequest{EndsAt: &later})
	require.NoError(t, err)
	assert.Equal(t, at(6), got.EndsAt)

	_, err = svc.Update(ctx, "u2", false, e.ID, UpdateEventRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHandler_AgendaQueryParsing(t *testing.T) {
	svc, _ := newService(nil, nil)
	h := NewHandler(svc)
	h.now = func() time.Time { return base.Add(10 * time.Hour) }

	r := chi.NewRouter()
	h.RegisterRoutes(r, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			claims := &middleware.AccessTokenClaims{UserID: "u1", Role: "user"}
			next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), claims)))
		})
	})

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{name: "defaults", query: "", status: http.StatusOK},
		{name: "explicit", query: "?from=2026-06-01T00:00:00Z&to=2026-06-08T00:00:00Z", status: http.StatusOK},
		{name: "malformed", query: "?from=yesterday", status: http.StatusBadRequest},
		{name: "too wide", query: "?from=2026-01-01T00:00:00Z&to=2027-06-01T00:00:00Z", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar/agenda"+tt.query, nil))
			assert.Equal(t, tt.status, rec.Code)

			var body core.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status == http.StatusOK, body.Success)
		})
	}
}
