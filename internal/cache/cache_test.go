package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bcmimarlik/site/internal/compress"
	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/model"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutAddrIsNop(t *testing.T) {
	c, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &NopCache{}, c)

	require.NoError(t, c.SetDocument(context.TODO(), model.Default()))
	_, err = c.GetDocument(context.TODO())
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.GetDocumentVersion(context.TODO())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNew_UnknownCompression(t *testing.T) {
	_, err := New(config.RedisConfig{Addr: "localhost:6379", Compression: "zip"})
	assert.ErrorIs(t, err, compress.ErrUnknownCodec)
}

// redisCache connects to SITE_TEST_REDIS_ADDR and skips when it is unset or unreachable.
func redisCache(t *testing.T, codec string) *RedisDocumentCache {
	t.Helper()

	addr := os.Getenv("SITE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SITE_TEST_REDIS_ADDR not set")
	}

	encoder, err := compress.New(codec)
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	c := NewRedisDocumentCacheWithClient(client, encoder, time.Minute)
	if err := c.Ping(context.TODO()); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	require.NoError(t, client.Del(context.TODO(), documentKey, documentVersionHash).Err())
	t.Cleanup(func() {
		client.Del(context.Background(), documentKey, documentVersionHash)
		_ = c.Close()
	})

	return c
}

func TestRedisDocumentCache(t *testing.T) {
	for _, codec := range []string{"none", "gzip", "lz4"} {
		t.Run(codec, func(t *testing.T) {
			c := redisCache(t, codec)
			ctx := context.TODO()

			_, err := c.GetDocument(ctx)
			assert.ErrorIs(t, err, ErrCacheMiss)

			require.NoError(t, c.SetDocument(ctx, model.Default()))
			got, err := c.GetDocument(ctx)
			require.NoError(t, err)
			assert.Equal(t, model.Default(), got)

			version, err := c.GetDocumentVersion(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), version)

			require.NoError(t, c.DeleteDocument(ctx))
			_, err = c.GetDocument(ctx)
			assert.ErrorIs(t, err, ErrCacheMiss)
		})
	}
}
