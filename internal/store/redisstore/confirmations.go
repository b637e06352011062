// Package redisstore keeps delete confirmations in Redis so that every
// server instance behind a load balancer accepts a token issued by another.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// DefaultPrefix namespaces confirmation keys.
const DefaultPrefix = "cutdesk:confirm:"

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Confirmations is a core.ConfirmationStore backed by Redis keys with a TTL.
type Confirmations struct {
	rdb    redis.Cmdable
	prefix string
}

// NewConfirmations stores tokens under prefix. An empty prefix uses
// DefaultPrefix.
func NewConfirmations(rdb redis.Cmdable, prefix string) *Confirmations {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Confirmations{rdb: rdb, prefix: prefix}
}

func (c *Confirmations) key(token string) string {
	return c.prefix + token
}

// Put stores p until ttl passes. Redis expires the key, so no sweeping is
// needed.
func (c *Confirmations) Put(ctx context.Context, p core.PendingDelete, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending delete: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(p.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store pending delete: %w", err)
	}
	return nil
}

// Take atomically reads and deletes the token, so concurrent confirmations
// of the same token succeed at most once.
func (c *Confirmations) Take(ctx context.Context, token string) (core.PendingDelete, error) {
	data, err := c.rdb.GetDel(ctx, c.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.PendingDelete{}, core.ErrTokenInvalid
	}
	if err != nil {
		return core.PendingDelete{}, fmt.Errorf("take pending delete: %w", err)
	}

	var p core.PendingDelete
	if err := json.Unmarshal(data, &p); err != nil {
		return core.PendingDelete{}, fmt.Errorf("decode pending delete: %w", err)
	}
	return p, nil
}
