// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"sync"
	"time"

	"mailru_broker/internal/platform/crypto"

	"github.com/patrickmn/go-cache"
)

// TokenBlocklistService tracks revoked refresh tokens by JTI.
type TokenBlocklistService interface {
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}

// InMemoryBlocklistService keeps revoked JTIs in a go-cache until the token
// would have expired anyway.
type InMemoryBlocklistService struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

// InMemoryBlocklistConfig holds the configuration for the InMemoryBlocklistService.
type InMemoryBlocklistConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// NewInMemoryBlocklistService creates a new in-memory blocklist service.
func NewInMemoryBlocklistService(cfg InMemoryBlocklistConfig) *InMemoryBlocklistService {
	return &InMemoryBlocklistService{
		cache: cache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
	}
}

func (s *InMemoryBlocklistService) AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error {
	duration := time.Until(expiresAt)
	if duration <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(jti, true, duration)
	return nil
}

func (s *InMemoryBlocklistService) IsBlocklisted(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, found := s.cache.Get(jti)
	return found, nil
}

// StateStore holds OAuth state values issued by the login endpoint. Each
// value is accepted once and only before its TTL runs out.
type StateStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewStateStore creates a state store whose entries live for ttl.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{cache: cache.New(ttl, 2*ttl)}
}

// Issue creates and remembers a fresh state value.
func (s *StateStore) Issue() (string, error) {
	state, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.SetDefault(state, struct{}{})
	return state, nil
}

// Consume reports whether state was issued and not yet used, and forgets it.
func (s *StateStore) Consume(state string) bool {
	if state == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.cache.Get(state); !found {
		return false
	}
	s.cache.Delete(state)
	return true
}
