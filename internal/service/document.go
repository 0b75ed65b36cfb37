package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bcmimarlik/site/internal/cache"
	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/store"
	"github.com/sirupsen/logrus"
)

// NewContentService creates a new ContentService. A nil cache disables caching.
func NewContentService(store store.Store, documentCache cache.DocumentCache) *ContentService {
	if documentCache == nil {
		documentCache = cache.NewNopCache()
	}
	return &ContentService{
		store: store,
		cache: documentCache,
	}
}

// ContentService reads and writes the site document.
type ContentService struct {
	store store.Store
	cache cache.DocumentCache

	// generation counts writes and invalidations. A document loaded from the
	// store only fills the cache when no write happened since the load began.
	mu         sync.Mutex
	generation uint64
}

func (c *ContentService) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// fill caches doc unless the store changed after generation was read.
func (c *ContentService) fill(ctx context.Context, generation uint64, doc *model.SiteDocument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		logrus.Debugf("skipping cache fill from generation %d, now %d", generation, c.generation)
		return nil
	}
	return c.cache.SetDocument(ctx, doc)
}

// Get returns the current document. It never fails: when neither the cache
// nor the store has a usable document the default document is returned.
func (c *ContentService) Get(ctx context.Context) *model.SiteDocument {
	doc, err := c.cache.GetDocument(ctx)
	if err == nil {
		metrics.ContentReads.WithLabelValues("cache").Inc()
		return doc
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logrus.Warnf("content cache read failed: %v", err)
	}

	generation := c.currentGeneration()
	doc, err = c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrAbsent) {
			logrus.Errorf("content store read failed: %v", err)
		}
		metrics.ContentReads.WithLabelValues("default").Inc()
		return model.Default()
	}

	if err := c.fill(ctx, generation, doc); err != nil {
		logrus.Warnf("content cache fill failed: %v", err)
	}

	metrics.ContentReads.WithLabelValues("store").Inc()
	return doc
}

// Save validates and persists doc in full. The stored document is left
// untouched when validation fails. Saves are serialized so the cache ends up
// holding the last document written.
func (c *ContentService) Save(ctx context.Context, doc *model.SiteDocument) error {
	if err := doc.Validate(); err != nil {
		metrics.ContentWrites.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Save(ctx, doc)
	c.generation++
	if err != nil {
		logrus.Errorf("content store write failed: %v", err)
		metrics.ContentWrites.WithLabelValues("error").Inc()
		// the cached copy may no longer match what is on disk
		c.deleteCached(ctx)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := c.cache.SetDocument(ctx, doc); err != nil {
		logrus.Warnf("content cache write failed: %v", err)
		c.deleteCached(ctx)
	}

	metrics.ContentWrites.WithLabelValues("ok").Inc()
	logrus.Infof("site document saved with %d projects", len(doc.Projects))

	return nil
}

// Invalidate drops the cached document so the next Get reads the store.
// Reads already in flight will not put their document back.
func (c *ContentService) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.deleteCached(ctx)
}

func (c *ContentService) deleteCached(ctx context.Context) {
	if err := c.cache.DeleteDocument(ctx); err != nil {
		logrus.Warnf("content cache invalidate failed: %v", err)
	}
}

// Refresh copies the stored document into the cache, or clears the cache when
// the store has nothing usable.
func (c *ContentService) Refresh(ctx context.Context) error {
	generation := c.currentGeneration()
	doc, err := c.store.Load(ctx)
	if errors.Is(err, store.ErrAbsent) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != generation {
			return nil
		}
		return c.cache.DeleteDocument(ctx)
	}
	if err != nil {
		return err
	}
	return c.fill(ctx, generation, doc)
}
