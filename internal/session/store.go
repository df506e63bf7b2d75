package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CredentialStore persists the upstream bearer token per gateway session.
// It is the only durable client-side state the gateway keeps, and only the
// session Authority writes to it.
type CredentialStore interface {
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Set(ctx context.Context, sessionID, token string) error
	Delete(ctx context.Context, sessionID string) error
}

const credentialKeyPrefix = "session:cred:"

// RedisCredentialStore keeps credentials in Redis so they survive gateway
// restarts, mirroring browser localStorage semantics.
type RedisCredentialStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCredentialStore constructs a Redis-backed store.
func NewRedisCredentialStore(client *redis.Client, ttl time.Duration) *RedisCredentialStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisCredentialStore{client: client, ttl: ttl}
}

func (s *RedisCredentialStore) Get(ctx context.Context, sessionID string) (string, bool, error) {
	raw, err := s.client.Get(ctx, credentialKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get credential: %w", err)
	}
	return raw, true, nil
}

func (s *RedisCredentialStore) Set(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, credentialKeyPrefix+sessionID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (s *RedisCredentialStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, credentialKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete credential: %w", err)
	}
	return nil
}

// MemoryCredentialStore is an in-process store used in tests and
// single-node development setups.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryCredentialStore constructs an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{tokens: make(map[string]string)}
}

func (s *MemoryCredentialStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	return token, ok, nil
}

func (s *MemoryCredentialStore) Set(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
	return nil
}

func (s *MemoryCredentialStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}
