// Package redis wires the Redis client used for mail deduplication and the
// readiness probe.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config carries the connection settings for the Redis instance.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PoolSize bounds the connection pool. Zero keeps the client default
	// (10 per CPU).
	PoolSize int
	// MailDedupTTL is the suppression window for duplicate outbound mails.
	MailDedupTTL time.Duration
}

// Connect opens a client against cfg and pings it so a bad address fails at
// startup instead of on the first mail.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
