package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/puissance4/internal/domain"
)

const (
	stateKeyPrefix = "puissance4:game:"
	updatesChannel = "puissance4:game-updates"
)

// StateCache keeps the latest snapshot of every live session under its own
// key and announces each change on a pub/sub channel.
type StateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStateCache(client *redis.Client, ttl time.Duration) *StateCache {
	return &StateCache{client: client, ttl: ttl}
}

func stateKey(gameID string) string {
	return stateKeyPrefix + gameID
}

func (c *StateCache) SaveState(ctx context.Context, gameID string, state domain.Snapshot) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, stateKey(gameID), payload, c.ttl)
	pipe.Publish(ctx, updatesChannel, gameID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mirror state of %s: %w", gameID, err)
	}
	return nil
}

func (c *StateCache) DeleteState(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, stateKey(gameID)).Err()
}

// LoadState reads a mirrored snapshot back for watchers of sessions held by
// another process; redis.Nil is returned untouched when the key is missing.
func (c *StateCache) LoadState(ctx context.Context, gameID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	raw, err := c.client.Get(ctx, stateKey(gameID)).Bytes()
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
