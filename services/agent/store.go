// File: services/agent/store.go
package agent

import (
	"context"
	"encoding/json"
	"time"

	"bookwise/models"

	"github.com/go-redis/redis/v8"
)

const sessionStatePrefix = "agent:state:"

// ConversationStore persists per-session negotiation state between turns.
// Get returns a zero-value state for unknown sessions.
type ConversationStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationState, error)
	Set(ctx context.Context, sessionID string, state *models.ConversationState) error
	Clear(ctx context.Context, sessionID string) error
}

type RedisConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConversationStore(client *redis.Client, ttl time.Duration) *RedisConversationStore {
	return &RedisConversationStore{client: client, ttl: ttl}
}

func (s *RedisConversationStore) Get(ctx context.Context, sessionID string) (*models.ConversationState, error) {
	key := sessionStatePrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.ConversationState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisConversationStore) Set(ctx context.Context, sessionID string, state *models.ConversationState) error {
	key := sessionStatePrefix + sessionID
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisConversationStore) Clear(ctx context.Context, sessionID string) error {
	key := sessionStatePrefix + sessionID
	return s.client.Del(ctx, key).Err()
}
