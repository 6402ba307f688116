// Package redis keeps short-lived delivery claims so that concurrent
// duplicate webhook deliveries are dropped before they reach Postgres.
package redis

import (
	"context"
	"fmt"
	"time"

	"studioBooker/internal/config"

	"github.com/redis/go-redis/v9"
)

const claimPrefix = "studio:webhook:claim:"

type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, cfg config.Redis) (*Deduper, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.ClaimTTL), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Deduper{client: client, ttl: ttl}
}

// Claim returns true if the caller is the first to claim key within the TTL.
func (d *Deduper) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, claimPrefix+key, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %q: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so that a retried delivery can be processed.
func (d *Deduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, claimPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %q: %w", key, err)
	}
	return nil
}

func (d *Deduper) Close() error {
	return d.client.Close()
}
