package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeMatrix(t *testing.T) {
	roles := []Role{RoleFieldAgent, RoleWarehouse, RoleAdmin}
	for _, have := range roles {
		session := NewSession("someone", have)
		for _, want := range append(roles, Role("")) {
			expected := want == "" || have == RoleAdmin || have == want
			assert.Equalf(t, expected, Authorize(session, want), "role %s against %q", have, want)
		}
	}
}

func TestAuthorizeNilSession(t *testing.T) {
	assert.False(t, Authorize(nil, ""))
	assert.False(t, Authorize(nil, RoleWarehouse))
}

func TestSessionExpiry(t *testing.T) {
	s := NewSession("agent7", RoleFieldAgent)
	now := s.IssuedAt

	assert.False(t, s.Expired(now, DefaultSessionTTL))
	assert.False(t, s.Expired(now.Add(23*time.Hour), DefaultSessionTTL))
	assert.True(t, s.Expired(now.Add(24*time.Hour), DefaultSessionTTL))
	assert.True(t, s.Expired(now.Add(48*time.Hour), DefaultSessionTTL))

	// Zero TTL means the default, not immediate expiry.
	assert.False(t, s.Expired(now.Add(time.Hour), 0))
}

func TestNewSession(t *testing.T) {
	s := NewSession("storekeeper", RoleWarehouse)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, RoleWarehouse, s.Role)
	assert.Equal(t, "storekeeper", s.Username)
	assert.WithinDuration(t, time.Now().UTC(), s.IssuedAt, time.Minute)
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleFieldAgent, RoleWarehouse, RoleAdmin} {
		parsed, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseRole("driver")
	assert.Error(t, err)
}
