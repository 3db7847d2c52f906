// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is one login on one device. The client holds an opaque refresh
// token; only its hash is stored. Each refresh rotates the session into a
// new row of the same family.
type Session struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	RotatedAt    *time.Time `db:"rotated_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	RevokedAt    *time.Time `db:"revoked_at"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

type SessionState int

const (
	SessionActive SessionState = iota
	SessionRotated
	SessionRevoked
	SessionExpired
)

// State reports how the session stands at now. A rotated session wins over
// revoked or expired because presenting it again signals token theft.
func (s *Session) State(now time.Time) SessionState {
	switch {
	case s.RotatedAt != nil:
		return SessionRotated
	case s.RevokedAt != nil:
		return SessionRevoked
	case !now.Before(s.ExpiresAt):
		return SessionExpired
	default:
		return SessionActive
	}
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
