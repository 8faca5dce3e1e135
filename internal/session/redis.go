package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/food_order/internal/ledger"
)

const (
	baseTTL   = 30 * time.Minute
	maxJitter = 5
)

type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisStore) Load(ctx context.Context, userID string) (ledger.Snapshot, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ledger.Snapshot{}, ErrMiss
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return snap, nil
}

func (r *RedisStore) Save(ctx context.Context, userID string, snap ledger.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(maxJitter+1))*time.Minute
	if err := r.client.Set(ctx, sessionKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return fmt.Sprintf("ledger:session:%s", userID)
}
