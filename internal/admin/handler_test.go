// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/realtime"
	"github.com/carterperez-dev/taskboard/internal/report"
)

type stubOverview struct {
	err error
}

func (s stubOverview) SystemOverview(context.Context) (*report.SystemOverview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &report.SystemOverview{
		SystemTotals: report.SystemTotals{Users: 5, Projects: 2},
	}, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(cfg HandlerConfig) chi.Router {
	r := chi.NewRouter()
	NewHandler(cfg).RegisterRoutes(r, passthrough, passthrough)
	return r
}

func get(t *testing.T, r chi.Router, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data, _ := body.Data.(map[string]any)
	return rec.Code, data
}

func TestSystemStats_ReportsProbeFailures(t *testing.T) {
	r := newRouter(HandlerConfig{
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		HubStats:  func() realtime.HubStats { return realtime.HubStats{Clients: 3, Groups: 1} },
	})

	code, data := get(t, r, "/admin/stats")
	require.Equal(t, http.StatusOK, code)

	db, _ := data["database"].(map[string]any)
	rd, _ := data["redis"].(map[string]any)
	hub, _ := data["realtime"].(map[string]any)
	assert.Equal(t, true, db["healthy"])
	assert.Equal(t, false, rd["healthy"])
	assert.InDelta(t, 3, hub["clients"], 0)

	runtimeStats, _ := data["runtime"].(map[string]any)
	assert.NotEmpty(t, runtimeStats["go_version"])
}

func TestOverview(t *testing.T) {
	code, data := get(t, newRouter(HandlerConfig{Reports: stubOverview{}}), "/admin/reports/overview")
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 5, data["users"], 0)
	assert.InDelta(t, 2, data["projects"], 0)

	code, _ = get(t, newRouter(HandlerConfig{Reports: stubOverview{err: errors.New("db")}}), "/admin/reports/overview")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestSystemStats_OmitsUnwiredSections(t *testing.T) {
	code, data := get(t, newRouter(HandlerConfig{}), "/admin/stats")
	require.Equal(t, http.StatusOK, code)

	assert.NotContains(t, data, "realtime")
	db, _ := data["database"].(map[string]any)
	assert.Equal(t, false, db["healthy"])
	assert.NotContains(t, db, "stats")
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	assert.False(t, probe(ctx, nil))
	assert.True(t, probe(ctx, func(context.Context) error { return nil }))
	assert.False(t, probe(ctx, func(context.Context) error { return errors.New("x") }))
}
