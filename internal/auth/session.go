package auth

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long a login remains valid.
const DefaultSessionTTL = 24 * time.Hour

// Session is a time-limited, role-tagged proof of login.
type Session struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewSession mints a session for the given account with IssuedAt set to now.
func NewSession(username string, role Role) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Username: username,
		Role:     role,
		IssuedAt: time.Now().UTC(),
	}
}

// Expired reports whether the session has outlived ttl at the given instant.
// A ttl of zero or less falls back to DefaultSessionTTL.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if s == nil {
		return true
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return now.Sub(s.IssuedAt) >= ttl
}

// Authorize reports whether the session permits access to a view gated by
// required. An unset required role admits any live session; admins are
// admitted everywhere; otherwise the roles must match. A nil session is
// never authorized.
func Authorize(s *Session, required Role) bool {
	if s == nil {
		return false
	}
	if required == "" {
		return true
	}
	if s.Role == RoleAdmin {
		return true
	}
	return s.Role == required
}
