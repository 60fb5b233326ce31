package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultSessionTTL)

	s := NewSession("agent7", RoleFieldAgent)
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, RoleFieldAgent, loaded.Role)
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	store := NewMemoryStore(DefaultSessionTTL)
	_, err := store.Load(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreExpiredTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultSessionTTL)

	s := NewSession("storekeeper", RoleWarehouse)
	s.IssuedAt = time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, store.Save(ctx, s))

	_, err := store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The expired record is purged, not just hidden.
	_, err = store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultSessionTTL)

	s := NewSession("admin1", RoleAdmin)
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Clear(ctx, s.ID))
	require.NoError(t, store.Clear(ctx, s.ID))

	_, err := store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	s := NewSession("agent7", RoleFieldAgent)

	token, err := IssueToken(secret, s, DefaultSessionTTL)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.SessionID)
	assert.Equal(t, RoleFieldAgent, claims.Role)
	assert.Equal(t, "agent7", claims.Subject)
}

func TestTokenWrongSecret(t *testing.T) {
	s := NewSession("agent7", RoleFieldAgent)
	token, err := IssueToken([]byte("one"), s, DefaultSessionTTL)
	require.NoError(t, err)

	_, err = ParseToken([]byte("another"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	s := NewSession("agent7", RoleFieldAgent)
	s.IssuedAt = time.Now().UTC().Add(-25 * time.Hour)

	token, err := IssueToken(secret, s, DefaultSessionTTL)
	require.NoError(t, err)

	_, err = ParseToken(secret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("warehouse123", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "warehouse123"))
	assert.False(t, CheckPassword(hash, "warehouse124"))
	assert.False(t, CheckPassword("not-a-hash", "warehouse123"))
}
