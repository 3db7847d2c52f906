// AngelaMos | 2026
// service_test.go

package planner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	tasks      map[string]Task
	clock      time.Time
	failSetAt  int
	setCalls   int
	failDelete bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:     make(map[string]Task),
		clock:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		failSetAt: -1,
	}
}

func (f *fakeRepo) Create(_ context.Context, t *Task) error {
	f.clock = f.clock.Add(time.Second)
	t.CreatedAt = f.clock
	t.UpdatedAt = f.clock
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, userID, id string) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("get planner task: %w", core.ErrNotFound)
	}
	return &t, nil
}

func (f *fakeRepo) GetParentID(ctx context.Context, userID, id string) (*string, error) {
	t, err := f.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return t.ParentID, nil
}

func (f *fakeRepo) CountSiblings(ctx context.Context, userID string, parentID *string) (int, error) {
	sibs, err := f.ListSiblings(ctx, userID, parentID)
	return len(sibs), err
}

func (f *fakeRepo) ListSiblings(_ context.Context, userID string, parentID *string) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.HasParent(parentID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeRepo) ListChildIDs(ctx context.Context, userID, parentID string) ([]string, error) {
	sibs, _ := f.ListSiblings(ctx, userID, &parentID)
	ids := make([]string, 0, len(sibs))
	for _, s := range sibs {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDue(_ context.Context, userID string, from, to time.Time) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.DueDate != nil &&
			!t.DueDate.Before(from) && t.DueDate.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, t *Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return fmt.Errorf("update planner task: %w", core.ErrNotFound)
	}
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeRepo) SetOrderIndex(_ context.Context, _, id string, index int) error {
	defer func() { f.setCalls++ }()
	if f.setCalls == f.failSetAt {
		return errBoom
	}
	t := f.tasks[id]
	t.OrderIndex = index
	f.tasks[id] = t
	return nil
}

func (f *fakeRepo) DeleteIDs(_ context.Context, userID string, ids []string) (int64, error) {
	if f.failDelete {
		return 0, errBoom
	}
	var n int64
	for _, id := range ids {
		if t, ok := f.tasks[id]; ok && t.UserID == userID {
			delete(f.tasks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) InTx(_ context.Context, fn func(Repository) error) error {
	snapshot := maps.Clone(f.tasks)
	if err := fn(f); err != nil {
		f.tasks = snapshot
		return err
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func mustCreate(t *testing.T, svc *Service, userID, title string, parentID *string) *Task {
	t.Helper()
	task, err := svc.Create(context.Background(), userID, CreateTaskRequest{
		Title:    title,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return task
}

func TestCreate_AppendsToSiblings(t *testing.T) {
	svc := NewService(newFakeRepo())

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	child := mustCreate(t, svc, "u1", "child", &a.ID)

	assert.Equal(t, 0, a.OrderIndex)
	assert.Equal(t, 1, b.OrderIndex)
	assert.Equal(t, 0, child.OrderIndex)
	assert.Equal(t, StatePending, a.State)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateTaskRequest{Title: "x", State: ptr(7)})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", CreateTaskRequest{Title: "x", ParentID: ptr("missing")})
	assert.ErrorIs(t, err, core.ErrNotFound)

	other := mustCreate(t, svc, "u2", "theirs", nil)
	_, err = svc.Create(ctx, "u1", CreateTaskRequest{Title: "x", ParentID: &other.ID})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReparent_RejectsDescendant(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	t1 := mustCreate(t, svc, "u1", "T1", nil)
	t2 := mustCreate(t, svc, "u1", "T2", &t1.ID)

	_, err := svc.Reparent(ctx, "u1", t1.ID, &t2.ID)
	require.ErrorIs(t, err, ErrCycle)

	stored := repo.tasks[t1.ID]
	assert.Nil(t, stored.ParentID)
	assert.Equal(t, t1.ID, *repo.tasks[t2.ID].ParentID)
}

func TestReparent_RejectsDeepDescendant(t *testing.T) {
	svc := NewService(newFakeRepo())

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", &a.ID)
	c := mustCreate(t, svc, "u1", "c", &b.ID)
	d := mustCreate(t, svc, "u1", "d", &c.ID)

	_, err := svc.Reparent(context.Background(), "u1", a.ID, &d.ID)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestReparent_RejectsSelf(t *testing.T) {
	svc := NewService(newFakeRepo())
	a := mustCreate(t, svc, "u1", "a", nil)

	_, err := svc.Reparent(context.Background(), "u1", a.ID, &a.ID)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestReparent_DetectsCorruptChain(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	x := mustCreate(t, svc, "u1", "x", nil)
	y := mustCreate(t, svc, "u1", "y", &x.ID)
	loose := mustCreate(t, svc, "u1", "loose", nil)

	bad := repo.tasks[x.ID]
	bad.ParentID = &y.ID
	repo.tasks[x.ID] = bad

	_, err := svc.Reparent(context.Background(), "u1", loose.ID, &y.ID)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestReparent_MovesAndAppends(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	mustCreate(t, svc, "u1", "a-child", &a.ID)

	moved, err := svc.Reparent(ctx, "u1", b.ID, &a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, *moved.ParentID)
	assert.Equal(t, 1, moved.OrderIndex)

	back, err := svc.Reparent(ctx, "u1", b.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, back.ParentID)
	assert.Equal(t, 1, back.OrderIndex)
}

func TestReparent_SameParentIsNoop(t *testing.T) {
	svc := NewService(newFakeRepo())
	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)

	got, err := svc.Reparent(context.Background(), "u1", a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.OrderIndex)
	assert.Equal(t, 1, b.OrderIndex)
}

func TestReparent_UnknownParent(t *testing.T) {
	svc := NewService(newFakeRepo())
	a := mustCreate(t, svc, "u1", "a", nil)

	_, err := svc.Reparent(context.Background(), "u1", a.ID, ptr("nope"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDelete_RemovesSubtreeOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	root := mustCreate(t, svc, "u1", "root", nil)
	child := mustCreate(t, svc, "u1", "child", &root.ID)
	mustCreate(t, svc, "u1", "grandchild", &child.ID)
	sibling := mustCreate(t, svc, "u1", "sibling", nil)
	keep := mustCreate(t, svc, "u1", "keep", &sibling.ID)

	n, err := svc.Delete(context.Background(), "u1", root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.Len(t, repo.tasks, 2)
	assert.Contains(t, repo.tasks, sibling.ID)
	assert.Contains(t, repo.tasks, keep.ID)
}

func TestDelete_MissingIsNoop(t *testing.T) {
	svc := NewService(newFakeRepo())

	n, err := svc.Delete(context.Background(), "u1", "ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_FailureKeepsTree(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	root := mustCreate(t, svc, "u1", "root", nil)
	mustCreate(t, svc, "u1", "child", &root.ID)
	repo.failDelete = true

	_, err := svc.Delete(context.Background(), "u1", root.ID)
	require.ErrorIs(t, err, errBoom)
	assert.Len(t, repo.tasks, 2)
}

func TestReorder(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	c := mustCreate(t, svc, "u1", "c", nil)

	got, err := svc.Reorder(ctx, "u1", nil, []string{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, 0, repo.tasks[c.ID].OrderIndex)
	assert.Equal(t, 1, repo.tasks[a.ID].OrderIndex)
	assert.Equal(t, 2, repo.tasks[b.ID].OrderIndex)
}

func TestReorder_RejectsMismatch(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	child := mustCreate(t, svc, "u1", "child", &a.ID)

	tests := []struct {
		name string
		ids  []string
	}{
		{name: "missing sibling", ids: []string{a.ID}},
		{name: "duplicate", ids: []string{a.ID, a.ID}},
		{name: "foreign id", ids: []string{a.ID, child.ID}},
		{name: "extra id", ids: []string{a.ID, b.ID, child.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reorder(ctx, "u1", nil, tt.ids)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestReorder_FailureRollsBack(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	repo.failSetAt = 1

	_, err := svc.Reorder(context.Background(), "u1", nil, []string{b.ID, a.ID})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, repo.tasks[a.ID].OrderIndex)
	assert.Equal(t, 1, repo.tasks[b.ID].OrderIndex)
}

func TestGetTree(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", "a", nil)
	b := mustCreate(t, svc, "u1", "b", nil)
	a1 := mustCreate(t, svc, "u1", "a1", &a.ID)
	a2 := mustCreate(t, svc, "u1", "a2", &a.ID)
	mustCreate(t, svc, "u2", "other user", nil)

	_, err := svc.Reorder(ctx, "u1", &a.ID, []string{a2.ID, a1.ID})
	require.NoError(t, err)

	tree, err := svc.GetTree(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, a.ID, tree[0].ID)
	assert.Equal(t, b.ID, tree[1].ID)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, a2.ID, tree[0].Children[0].ID)
	assert.Equal(t, a1.ID, tree[0].Children[1].ID)
	assert.Empty(t, tree[1].Children)
}

func TestBuildTree_OrphansBecomeRoots(t *testing.T) {
	tasks := []Task{
		{ID: "a", ParentID: ptr("gone"), OrderIndex: 1},
		{ID: "b", OrderIndex: 0},
	}

	roots := BuildTree(tasks)
	require.Len(t, roots, 2)
	assert.Equal(t, "b", roots[0].ID)
	assert.Equal(t, "a", roots[1].ID)
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	a, err := svc.Create(ctx, "u1", CreateTaskRequest{Title: "a", DueDate: &due})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "u1", a.ID, UpdateTaskRequest{
		Title:        ptr("  renamed  "),
		State:        ptr(StateCompleted),
		ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, StateCompleted, got.State)
	assert.Nil(t, got.DueDate)

	_, err = svc.Update(ctx, "u1", a.ID, UpdateTaskRequest{State: ptr(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Update(ctx, "u2", a.ID, UpdateTaskRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListChildren(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	a := mustCreate(t, svc, "u1", "a", nil)
	mustCreate(t, svc, "u1", "b", nil)
	mustCreate(t, svc, "u1", "a1", &a.ID)

	roots, err := svc.ListChildren(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	kids, err := svc.ListChildren(ctx, "u1", &a.ID)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, "a1", kids[0].Title)

	_, err = svc.ListChildren(ctx, "u2", &a.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
