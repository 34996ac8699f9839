package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore resolves opaque session tokens. Injected rather than held in
// process memory so that sessions survive restarts and are shared across
// instances.
type TokenStore interface {
	Set(ctx context.Context, token string, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// RedisTokenStore keeps sessions in Redis with a TTL.
type RedisTokenStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisTokenStore creates a Redis-backed token store. Zero ttl means
// sessions never expire.
func NewRedisTokenStore(redisClient *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{redis: redisClient, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Set stores the session under the token.
func (s *RedisTokenStore) Set(ctx context.Context, token string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("auth: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: set session: %w", err)
	}
	return nil
}

// Get resolves a token to its session, or ErrInvalidToken.
func (s *RedisTokenStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("auth: get session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("auth: unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete invalidates a token. Deleting an unknown token is not an error.
func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

// InMemoryTokenStore is a TokenStore for tests and single-instance
// development.
type InMemoryTokenStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryTokenStore creates an empty in-memory token store.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{sessions: make(map[string]*Session)}
}

// Set stores the session under the token.
func (s *InMemoryTokenStore) Set(ctx context.Context, token string, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[token] = &cp
	return nil
}

// Get resolves a token to its session, or ErrInvalidToken.
func (s *InMemoryTokenStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	cp := *session
	return &cp, nil
}

// Delete invalidates a token.
func (s *InMemoryTokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
