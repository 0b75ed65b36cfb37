package cache

import (
	"context"
	"errors"

	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/model"
)

// ErrCacheMiss is returned when the cache holds no document.
var ErrCacheMiss = errors.New("cache miss")

// DocumentCache is a cache for the site document.
type DocumentCache interface {
	// GetDocumentVersion gets the version of the cached document.
	GetDocumentVersion(ctx context.Context) (int64, error)
	// GetDocument gets the document from the cache.
	GetDocument(ctx context.Context) (*model.SiteDocument, error)
	// SetDocument sets the document in the cache.
	SetDocument(ctx context.Context, doc *model.SiteDocument) error
	// DeleteDocument deletes the document from the cache.
	DeleteDocument(ctx context.Context) error
}

var _ DocumentCache = (*NopCache)(nil)

// NopCache is used when no redis address is configured. Every read misses.
type NopCache struct{}

func NewNopCache() *NopCache {
	return &NopCache{}
}

func (n *NopCache) GetDocumentVersion(ctx context.Context) (int64, error) {
	return 0, ErrCacheMiss
}

func (n *NopCache) GetDocument(ctx context.Context) (*model.SiteDocument, error) {
	return nil, ErrCacheMiss
}

func (n *NopCache) SetDocument(ctx context.Context, doc *model.SiteDocument) error {
	return nil
}

func (n *NopCache) DeleteDocument(ctx context.Context) error {
	return nil
}

// New returns a redis backed cache when an address is configured and a
// NopCache otherwise.
func New(cfg config.RedisConfig) (DocumentCache, error) {
	if cfg.Addr == "" {
		return NewNopCache(), nil
	}
	return NewRedisDocumentCache(cfg)
}
