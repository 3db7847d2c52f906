// AngelaMos | 2026
// jobs.go

package jobs

import (
	"context"
	"time"
)

const (
	ActivityRetentionJob = "activity-retention"
	TokenCleanupJob      = "refresh-token-cleanup"
)

type ActivityPruner interface {
	Prune(ctx context.Context) (int64, error)
}

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

func ActivityRetention(p ActivityPruner, every time.Duration) Job {
	return Job{
		Name:     ActivityRetentionJob,
		Interval: every,
		Run:      p.Prune,
	}
}

func TokenCleanup(p TokenPurger, every time.Duration) Job {
	return Job{
		Name:     TokenCleanupJob,
		Interval: every,
		Run:      p.PurgeExpiredTokens,
	}
}
