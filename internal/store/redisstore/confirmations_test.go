//go:build integration

// Run with: go test -tags integration ./internal/store/redisstore/...

package redisstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

func setupConfirmations(t *testing.T) *Confirmations {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewConfirmations(rdb, "test:confirm:")
}

func TestTakeOnce(t *testing.T) {
	c := setupConfirmations(t)
	ctx := context.Background()

	pending := core.PendingDelete{Entity: "materials", RecordID: "r1", Description: "MS plate", Token: "t1"}
	require.NoError(t, c.Put(ctx, pending, time.Minute))

	got, err := c.Take(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "materials", got.Entity)
	assert.Equal(t, "r1", got.RecordID)
	assert.Equal(t, "MS plate", got.Description)

	_, err = c.Take(ctx, "t1")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestUnknownTokenIsInvalid(t *testing.T) {
	c := setupConfirmations(t)
	_, err := c.Take(context.Background(), "never-issued")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenExpires(t *testing.T) {
	c := setupConfirmations(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, core.PendingDelete{Token: "short"}, time.Second))
	time.Sleep(1500 * time.Millisecond)

	_, err := c.Take(ctx, "short")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestConcurrentTakeSucceedsOnce(t *testing.T) {
	c := setupConfirmations(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, core.PendingDelete{Token: "race"}, time.Minute))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Take(ctx, "race"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
