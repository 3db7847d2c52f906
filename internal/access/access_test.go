// AngelaMos | 2026
// access_test.go

package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type stubProjects map[string]string

func (s stubProjects) GetOwnerID(_ context.Context, projectID string) (string, error) {
	owner, ok := s[projectID]
	if !ok {
		return "", fmt.Errorf("get project owner: %w", core.ErrNotFound)
	}
	return owner, nil
}

type stubMembers map[string]string

func (s stubMembers) GetMemberRole(_ context.Context, projectID, userID string) (string, error) {
	role, ok := s[projectID+"/"+userID]
	if !ok {
		return "", fmt.Errorf("get member role: %w", core.ErrNotFound)
	}
	return role, nil
}

func newChecker() *Checker {
	return NewChecker(
		stubProjects{"p1": "owner"},
		stubMembers{
			"p1/mgr": RoleManager,
			"p1/mem": RoleMember,
			"p1/obs": RoleObserver,
		},
	)
}

func TestChecker_CapabilityMatrix(t *testing.T) {
	tests := []struct {
		user    string
		admin   bool
		allowed map[Capability]bool
	}{
		{"owner", false, map[Capability]bool{CapView: true, CapEditTasks: true, CapManageProject: true, CapOwn: true}},
		{"mgr", false, map[Capability]bool{CapView: true, CapEditTasks: true, CapManageProject: true}},
		{"mem", false, map[Capability]bool{CapView: true, CapEditTasks: true}},
		{"obs", false, map[Capability]bool{CapView: true}},
		{"root", true, map[Capability]bool{CapView: true}},
	}

	c := newChecker()
	for _, tt := range tests {
		for _, capability := range []Capability{CapView, CapEditTasks, CapManageProject, CapOwn} {
			t.Run(fmt.Sprintf("%s/%s", tt.user, capability), func(t *testing.T) {
				_, err := c.Require(context.Background(), "p1", tt.user, tt.admin, capability)
				if tt.allowed[capability] {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, core.ErrForbidden)
				}
			})
		}
	}
}

func TestChecker_StrangerGetsNotFound(t *testing.T) {
	_, err := newChecker().Resolve(context.Background(), "p1", "stranger", false)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestChecker_UnknownProject(t *testing.T) {
	_, err := newChecker().Resolve(context.Background(), "nope", "owner", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestChecker_ResolveRoles(t *testing.T) {
	a, err := newChecker().Resolve(context.Background(), "p1", "owner", false)
	require.NoError(t, err)
	assert.True(t, a.IsOwner())
	assert.Equal(t, RoleOwner, a.Role)

	a, err = newChecker().Resolve(context.Background(), "p1", "obs", false)
	require.NoError(t, err)
	assert.Equal(t, LevelObserver, a.Level)
	assert.True(t, a.IsMember())
}

type failingMembers struct{}

func (failingMembers) GetMemberRole(context.Context, string, string) (string, error) {
	return "", errors.New("connection reset")
}

func TestChecker_PropagatesLookupFailure(t *testing.T) {
	c := NewChecker(stubProjects{"p1": "owner"}, failingMembers{})
	_, err := c.Resolve(context.Background(), "p1", "mem", false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}
