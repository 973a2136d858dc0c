package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each snapshot as a JSON value under cart:<customerID>.
// Every save refreshes the expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, customerID int64) (Snapshot, error) {
	data, err := r.client.Get(ctx, key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis get cart: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	return snap, nil
}

func (r *RedisStore) Save(ctx context.Context, customerID int64, snap Snapshot) error {
	if snap.Empty() && !snap.PromoApplied {
		return r.Clear(ctx, customerID)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, key(customerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, customerID int64) error {
	if err := r.client.Del(ctx, key(customerID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func key(customerID int64) string {
	return fmt.Sprintf("cart:%d", customerID)
}
