package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/bcmimarlik/site/internal/compress"
	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/model"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	documentKey         = "site:content"
	documentVersionHash = "site:content:version"
	documentVersionKey  = "current"
	documentCodecKey    = "codec"
)

var _ DocumentCache = (*RedisDocumentCache)(nil)

type RedisDocumentCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

// NewRedisDocumentCache connects to the configured redis.
func NewRedisDocumentCache(cfg config.RedisConfig) (*RedisDocumentCache, error) {
	encoder, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2,
	})

	return NewRedisDocumentCacheWithClient(client, encoder, cfg.TTL), nil
}

func NewRedisDocumentCacheWithClient(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisDocumentCache {
	if encoder == nil {
		encoder = compress.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisDocumentCache{client: client, encoder: encoder, ttl: ttl}
}

// Ping checks that redis is reachable.
func (r *RedisDocumentCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDocumentCache) GetDocumentVersion(ctx context.Context) (int64, error) {
	res := r.client.HGet(ctx, documentVersionHash, documentVersionKey)
	if err := res.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, err
	}

	return strconv.ParseInt(res.Val(), 10, 64)
}

func (r *RedisDocumentCache) GetDocument(ctx context.Context) (*model.SiteDocument, error) {
	res := r.client.Get(ctx, documentKey)
	if err := res.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	codecName, err := r.client.HGet(ctx, documentVersionHash, documentCodecKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	decoder := r.encoder
	if codecName != "" && codecName != r.encoder.Name() {
		if decoder, err = compress.New(codecName); err != nil {
			return nil, err
		}
	}

	data, err := decoder.Decode(buf)
	if err != nil {
		logrus.Warnf("dropping undecodable cached document: %v", err)
		_ = r.DeleteDocument(ctx)
		return nil, ErrCacheMiss
	}

	doc := &model.SiteDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		logrus.Warnf("dropping unparsable cached document: %v", err)
		_ = r.DeleteDocument(ctx)
		return nil, ErrCacheMiss
	}

	return doc, nil
}

// SetDocument stores the document and bumps the cached version.
func (r *RedisDocumentCache) SetDocument(ctx context.Context, doc *model.SiteDocument) error {
	marshal, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	encoded, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, documentKey, encoded, r.ttl).Err(); err != nil {
			return err
		}
		if err := p.HIncrBy(ctx, documentVersionHash, documentVersionKey, 1).Err(); err != nil {
			return err
		}
		if err := p.HSet(ctx, documentVersionHash, documentCodecKey, r.encoder.Name()).Err(); err != nil {
			return err
		}
		return p.Expire(ctx, documentVersionHash, r.ttl).Err()
	})

	return err
}

func (r *RedisDocumentCache) DeleteDocument(ctx context.Context) error {
	return r.client.Del(ctx, documentKey).Err()
}

func (r *RedisDocumentCache) Close() error {
	return r.client.Close()
}
