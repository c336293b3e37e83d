package court

import "time"

// Role identifies which side of a session a participant occupies.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

// Valid reports whether the role is one of the two known sides.
func (r Role) Valid() bool {
	return r == RoleA || r == RoleB
}

// Session captures a bounded two-party conversation context. Anonymous
// sessions carry display names and an invite token; identified sessions
// reference persistent user ids instead.
type Session struct {
	ID          string     `json:"id"`
	UserAID     string     `json:"userAId,omitempty"`
	UserBID     string     `json:"userBId,omitempty"`
	IsAnonymous bool       `json:"isAnonymous"`
	InviteToken string     `json:"inviteToken,omitempty"`
	UserAName   string     `json:"userAName,omitempty"`
	UserBName   string     `json:"userBName,omitempty"`
	UserAJoined bool       `json:"userAJoined"`
	UserBJoined bool       `json:"userBJoined"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Participant tokens bind a client to a role. Handed out exactly once,
	// in the create and join responses; never part of a session payload.
	UserAToken string `json:"-"`
	UserBToken string `json:"-"`
}

// Expired reports whether the session's expiry has passed at now.
// Sessions without an expiry never expire.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// DisplayName resolves the label shown for a role, falling back to the
// generic role label when no name was recorded.
func (s Session) DisplayName(role Role) string {
	switch role {
	case RoleA:
		if s.UserAName != "" {
			return s.UserAName
		}
		return "User A"
	default:
		if s.UserBName != "" {
			return s.UserBName
		}
		return "User B"
	}
}

// ParticipantToken returns the token bound to the given role, empty if the
// role has not joined yet.
func (s Session) ParticipantToken(role Role) string {
	if role == RoleA {
		return s.UserAToken
	}
	return s.UserBToken
}
