package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/puissance4/internal/domain"
)

func TestInitRedisWithoutAddress(t *testing.T) {
	client, err := InitRedis("", "")
	if client != nil || err != nil {
		t.Fatalf("expected disabled mirror, got %v / %v", client, err)
	}
}

func TestStateKey(t *testing.T) {
	if got := stateKey("abc"); got != "puissance4:game:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Runs only with REDIS_TEST_ADDR pointing at a scratch instance.
func TestStateCacheAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, _ := InitRedis(addr, os.Getenv("REDIS_TEST_PASSWORD"))
	if client == nil {
		t.Fatalf("could not reach redis at %s", addr)
	}
	defer client.Close()

	ctx := context.Background()
	cache := NewStateCache(client, time.Minute)
	sub := client.Subscribe(ctx, updatesChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	gameID := "redis-test-" + time.Now().Format("150405.000000")
	snap := domain.Snapshot{GameID: gameID, MoveCount: 3, Status: domain.StatusInProgress}
	if err := cache.SaveState(ctx, gameID, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != gameID {
			t.Fatalf("unexpected update %q", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no update published")
	}

	got, err := cache.LoadState(ctx, gameID)
	if err != nil || got.MoveCount != 3 {
		t.Fatalf("load: %+v %v", got, err)
	}

	if err := cache.DeleteState(ctx, gameID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.LoadState(ctx, gameID); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}
