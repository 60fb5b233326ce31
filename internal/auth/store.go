package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/meatline/meatline/internal/cache"
)

// ErrSessionNotFound indicates no live session exists for the given id.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions across restarts. Load must treat expired records
// as absent; Clear is idempotent and never fails on missing sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Clear(ctx context.Context, id string) error
}

// cacheStore keeps sessions in the shared cache backend (redis in
// production), letting the backend's TTL evict them on expiry.
type cacheStore struct {
	cache cache.Store
	ttl   time.Duration
}

// NewStore builds a session store on top of the cache backend.
func NewStore(backend cache.Store, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &cacheStore{cache: backend, ttl: ttl}
}

func sessionKey(id string) string {
	return "sessions:" + id
}

func (c *cacheStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, sessionKey(s.ID), payload, c.ttl)
}

func (c *cacheStore) Load(ctx context.Context, id string) (*Session, error) {
	payload, err := c.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	if s.Expired(time.Now().UTC(), c.ttl) {
		_ = c.cache.Delete(ctx, sessionKey(id))
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (c *cacheStore) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.cache.Delete(ctx, sessionKey(id))
}

// MemoryStore is an in-process session store used in tests and when the
// cache backend is disabled. Sessions do not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
}

// NewMemoryStore builds an empty in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{ttl: ttl, sessions: make(map[string]Session)}
}

// Save stores a copy of the session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Load returns the session if present and unexpired; expired sessions are
// removed on sight.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(time.Now().UTC(), m.ttl) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	copied := s
	return &copied, nil
}

// Clear removes the session if it exists.
func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
