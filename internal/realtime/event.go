// AngelaMos | 2026
// event.go

package realtime

import (
	"context"
	"time"
)

const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher fans an event out to every client joined to its project.
// Delivery is best effort and never reports failure to the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type clientMessage struct {
	Action    string `json:"action"`
	ProjectID string `json:"project_id"`
}

type serverMessage struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	Message   string `json:"message,omitempty"`
}
