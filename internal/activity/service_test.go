// AngelaMos | 2026
// service_test.go

package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
)

type fakeRepo struct {
	logs      []Log
	createErr error
	deleteErr error
}

func (f *fakeRepo) Create(_ context.Context, l *Log) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeRepo) filter(match func(Log) bool, page core.PageParams) ([]Log, int, error) {
	var all []Log
	for _, l := range f.logs {
		if match(l) {
			all = append(all, l)
		}
	}
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID string, page core.PageParams) ([]Log, int, error) {
	return f.filter(func(l Log) bool { return l.ProjectID != nil && *l.ProjectID == projectID }, page)
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string, page core.PageParams) ([]Log, int, error) {
	return f.filter(func(l Log) bool { return l.UserID != nil && *l.UserID == userID }, page)
}

func (f *fakeRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.logs[:0]
	var n int64
	for _, l := range f.logs {
		if l.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return n, nil
}

func (f *fakeRepo) Count(context.Context) (int, error) {
	return len(f.logs), nil
}

func (f *fakeRepo) InTx(_ context.Context, fn func(Repository) error) error {
	snapshot := append([]Log(nil), f.logs...)
	if err := fn(f); err != nil {
		f.logs = snapshot
		return err
	}
	return nil
}

type ownerLookup map[string]string

func (o ownerLookup) GetOwnerID(_ context.Context, id string) (string, error) {
	if owner, ok := o[id]; ok {
		return owner, nil
	}
	return "", fmt.Errorf("get owner: %w", core.ErrNotFound)
}

type noMembers struct{}

func (noMembers) GetMemberRole(context.Context, string, string) (string, error) {
	return "", core.ErrNotFound
}

func newTestService(repo Repository, retention time.Duration) *Service {
	checker := access.NewChecker(ownerLookup{"p1": "owner"}, noMembers{})
	return NewService(repo, checker, retention, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_RecordIsBestEffort(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	svc := newTestService(repo, time.Hour)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), Entry{UserID: "u", Action: ActionCreated, EntityType: EntityTask})
	})
	assert.Empty(t, repo.logs)
}

func TestService_RecordScopesOptionalIDs(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, time.Hour)

	svc.Record(context.Background(), Entry{UserID: "u", Action: ActionUpdated, EntityType: EntityUser})
	svc.Record(context.Background(), Entry{UserID: "u", ProjectID: "p1", Action: ActionCreated, EntityType: EntityProject})

	require.Len(t, repo.logs, 2)
	assert.Nil(t, repo.logs[0].ProjectID)
	require.NotNil(t, repo.logs[1].ProjectID)
	assert.Equal(t, "p1", *repo.logs[1].ProjectID)
	assert.NotEmpty(t, repo.logs[1].ID)
}

func TestService_ListForProjectRequiresView(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, time.Hour)
	svc.Record(context.Background(), Entry{UserID: "owner", ProjectID: "p1", Action: ActionCreated, EntityType: EntityProject})

	logs, total, err := svc.ListForProject(context.Background(), "p1", "owner", false, core.PageParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, logs, 1)

	_, _, err = svc.ListForProject(context.Background(), "p1", "stranger", false, core.PageParams{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = svc.ListForProject(context.Background(), "p1", "stranger", true, core.PageParams{Page: 1, PageSize: 10})
	assert.NoError(t, err)
}

func TestService_PruneDeletesOnlyOlderThanCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{logs: []Log{
		{ID: "old", CreatedAt: now.Add(-91 * 24 * time.Hour)},
		{ID: "edge", CreatedAt: now.Add(-90 * 24 * time.Hour)},
		{ID: "fresh", CreatedAt: now.Add(-time.Hour)},
	}}
	svc := newTestService(repo, 90*24*time.Hour)
	svc.now = func() time.Time { return now }

	deleted, err := svc.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var ids []string
	for _, l := range repo.logs {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"edge", "fresh"}, ids)
}

func TestService_PruneFailureKeepsRows(t *testing.T) {
	repo := &fakeRepo{
		logs:      []Log{{ID: "old", CreatedAt: time.Unix(0, 0)}},
		deleteErr: errors.New("lock timeout"),
	}
	svc := newTestService(repo, time.Hour)

	_, err := svc.Prune(context.Background())
	require.Error(t, err)
	assert.Len(t, repo.logs, 1)
}

func TestService_PruneRejectsZeroRetention(t *testing.T) {
	_, err := newTestService(&fakeRepo{}, 0).Prune(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
