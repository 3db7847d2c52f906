// AngelaMos | 2026
// handler_test.go

package task

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &middleware.AccessTokenClaims{UserID: userID, Role: "user"}
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	}
}

func serve(f *fixture, userID string, req *http.Request) (*httptest.ResponseRecorder, core.Response) {
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, asUser(userID))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body core.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHandler_CreateEnvelope(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/tasks",
		strings.NewReader(`{"title":"Design review","priority":"high"}`))

	rec, body := serve(f, memberID, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Design review", data["title"])
	assert.Equal(t, "high", data["priority"])
}

func TestHandler_ValidationError(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/tasks",
		strings.NewReader(`{"title":"","priority":"whenever"}`))

	rec, body := serve(f, memberID, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}

func TestHandler_ObserverForbiddenStrangerNotFound(t *testing.T) {
	f := newFixture()

	rec, body := serve(f, observerID, httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/tasks",
		strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	rec, _ = serve(f, strangerID, httptest.NewRequest(http.MethodGet, "/projects/"+projectID+"/tasks", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MoveAndBadFilter(t *testing.T) {
	f := newFixture()
	task := f.create(t, CreateTaskRequest{Title: "t"})

	rec, body := serve(f, memberID, httptest.NewRequest(http.MethodPatch,
		"/projects/"+projectID+"/tasks/"+task.ID+"/status", strings.NewReader(`{"status":"done"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]any)
	assert.Equal(t, "done", data["status"])
	assert.NotNil(t, data["completed_at"])

	rec, _ = serve(f, memberID, httptest.NewRequest(http.MethodGet, "/projects/"+projectID+"/tasks?status=blocked", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_MalformedIDs(t *testing.T) {
	f := newFixture()

	rec, body := serve(f, memberID, httptest.NewRequest(http.MethodGet,
		"/projects/"+projectID+"/tasks/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	rec, _ = serve(f, memberID, httptest.NewRequest(http.MethodGet, "/projects/p1/tasks", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(f, memberID, httptest.NewRequest(http.MethodGet,
		"/projects/"+projectID+"/tasks?assignee_id=bob", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
