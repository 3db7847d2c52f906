// AngelaMos | 2026
// dto.go

package activity

import (
	"time"
)

type LogResponse struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"user_id"`
	ProjectID  *string   `json:"project_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type PruneResponse struct {
	Deleted int64 `json:"deleted"`
}

func ToLogResponseList(logs []Log) []LogResponse {
	out := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, LogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			ProjectID:  l.ProjectID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt,
		})
	}
	return out
}
