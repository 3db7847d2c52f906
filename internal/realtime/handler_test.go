// AngelaMos | 2026
// handler_test.go

package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/core"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

type owners map[string]string

func (o owners) GetOwnerID(_ context.Context, id string) (string, error) {
	if owner, ok := o[id]; ok {
		return owner, nil
	}
	return "", fmt.Errorf("get owner: %w", core.ErrNotFound)
}

type noMembers struct{}

func (noMembers) GetMemberRole(context.Context, string, string) (string, error) {
	return "", core.ErrNotFound
}

// fakeAuth trusts a user query parameter in place of a signed token.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := &middleware.AccessTokenClaims{UserID: r.URL.Query().Get("user")}
		next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
	})
}

func startServer(t *testing.T) (*Hub, *Broker, string) {
	t.Helper()

	hub := NewHub(testLogger())
	broker := NewBroker(hub, nil, "", time.Second, testLogger())
	checker := access.NewChecker(owners{"p1": "alice"}, noMembers{})

	r := chi.NewRouter()
	NewHandler(hub, checker, HandlerConfig{SendBuffer: 8}, testLogger()).RegisterRoutes(r, fakeAuth)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, broker, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() }) //nolint:errcheck // test cleanup
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg clientMessage) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, wsjson.Write(ctx, conn, msg))

	var reply map[string]any
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	return reply
}

func TestHandler_JoinReceivesEvents(t *testing.T) {
	hub, broker, base := startServer(t)
	conn := dial(t, base+"/realtime?user=alice")

	reply := roundTrip(t, conn, clientMessage{Action: actionJoin, ProjectID: "p1"})
	assert.Equal(t, "joined", reply["type"])
	assert.Equal(t, 1, hub.GroupSize("p1"))

	broker.Publish(context.Background(), Event{Type: EventTaskUpdated, ProjectID: "p1", EntityID: "t9"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var ev Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, EventTaskUpdated, ev.Type)
	assert.Equal(t, "t9", ev.EntityID)

	reply = roundTrip(t, conn, clientMessage{Action: actionLeave, ProjectID: "p1"})
	assert.Equal(t, "left", reply["type"])
	assert.Equal(t, 0, hub.GroupSize("p1"))
}

func TestHandler_JoinWithoutAccessIsRefused(t *testing.T) {
	hub, _, base := startServer(t)
	conn := dial(t, base+"/realtime?user=mallory")

	reply := roundTrip(t, conn, clientMessage{Action: actionJoin, ProjectID: "p1"})
	assert.Equal(t, "error", reply["type"])
	assert.Equal(t, 0, hub.GroupSize("p1"))

	reply = roundTrip(t, conn, clientMessage{Action: "dance", ProjectID: "p1"})
	assert.Equal(t, "error", reply["type"])

	reply = roundTrip(t, conn, clientMessage{Action: actionJoin})
	assert.Equal(t, "project_id is required", reply["message"])
}

func TestBroker_FallsBackToLocalWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := NewHub(testLogger())
	broker := NewBroker(hub, rdb, "", time.Minute, testLogger())
	c := hub.Register("alice", 16)
	hub.Join(c, "p1")

	for i := 0; i < 7; i++ {
		broker.Publish(context.Background(), Event{Type: EventTaskDeleted, ProjectID: "p1"})
	}

	assert.Len(t, drain(c), 7)
}
