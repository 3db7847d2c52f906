// AngelaMos | 2026
// hub.go

package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type Client struct {
	ID     string
	UserID string

	send     chan []byte
	projects map[string]struct{}
	closed   bool
}

func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Hub tracks which local clients are joined to which project groups.
// Membership lives in memory only; each instance has its own hub.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	dropped atomic.Int64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(userID string, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}

	c := &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		send:     make(chan []byte, buffer),
		projects: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	return c
}

// Unregister removes the client from every group and closes its channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}

	for projectID := range c.projects {
		h.removeLocked(c, projectID)
	}
	delete(h.clients, c)
	c.closed = true
	close(c.send)
}

func (h *Hub) Join(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}

	group, ok := h.groups[projectID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[projectID] = group
	}
	group[c] = struct{}{}
	c.projects[projectID] = struct{}{}
}

func (h *Hub) Leave(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c, projectID)
}

func (h *Hub) removeLocked(c *Client, projectID string) {
	delete(c.projects, projectID)

	group, ok := h.groups[projectID]
	if !ok {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, projectID)
	}
}

// Broadcast queues msg for every client in the group and returns how many
// accepted it. Clients with a full buffer miss the message.
func (h *Hub) Broadcast(projectID string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.groups[projectID] {
		if h.offerLocked(c, msg) {
			delivered++
		}
	}

	return delivered
}

// Direct queues msg for a single client.
func (h *Hub) Direct(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.offerLocked(c, msg)
}

func (h *Hub) offerLocked(c *Client, msg []byte) bool {
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		if n := h.dropped.Add(1); n%100 == 1 {
			h.logger.Warn("realtime client too slow, dropping messages",
				"client_id", c.ID,
				"user_id", c.UserID,
				"dropped_total", n,
			)
		}
		return false
	}
}

func (h *Hub) GroupSize(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.groups[projectID])
}

type HubStats struct {
	Clients int   `json:"clients"`
	Groups  int   `json:"groups"`
	Dropped int64 `json:"dropped"`
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubStats{
		Clients: len(h.clients),
		Groups:  len(h.groups),
		Dropped: h.dropped.Load(),
	}
}

// Shutdown disconnects every client; their connection pumps observe the
// closed channel and exit.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
