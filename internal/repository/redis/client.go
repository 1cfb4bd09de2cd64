package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// InitRedis connects to addr. A nil client with a nil error means Redis is
// unavailable and the server runs without the state mirror.
func InitRedis(addr, password string) (*redis.Client, error) {
	if addr == "" {
		log.Info().Msg("[REDIS] REDIS_URL not set, state mirror disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("[REDIS] Could not connect, running without the state mirror")
		client.Close()
		return nil, nil
	}

	log.Info().Str("addr", addr).Msg("[REDIS] Connected successfully")
	return client, nil
}
