package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bcmimarlik/site/internal/cache"
	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/store"
	"github.com/bcmimarlik/site/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process DocumentCache.
type memoryCache struct {
	mu      sync.Mutex
	doc     *model.SiteDocument
	version int64
	sets    int
}

func (m *memoryCache) GetDocumentVersion(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return 0, cache.ErrCacheMiss
	}
	return m.version, nil
}

func (m *memoryCache) GetDocument(ctx context.Context) (*model.SiteDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.doc.Clone(), nil
}

func (m *memoryCache) SetDocument(ctx context.Context, doc *model.SiteDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
	m.version++
	m.sets++
	return nil
}

func (m *memoryCache) DeleteDocument(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = nil
	return nil
}

// pausingStore holds the first Load after it has read the store until
// release is closed.
type pausingStore struct {
	store.Store
	paused  atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newPausingStore(s store.Store) *pausingStore {
	return &pausingStore{
		Store:   s,
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *pausingStore) Load(ctx context.Context) (*model.SiteDocument, error) {
	doc, err := p.Store.Load(ctx)
	if p.paused.CompareAndSwap(false, true) {
		close(p.loaded)
		<-p.release
	}
	return doc, err
}

// brokenStorePath returns a path that can be read as absent but never written.
func brokenStorePath(t *testing.T) string {
	t.Helper()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	return filepath.Join(blocker, "site-data.json")
}

func TestContentService_GetDefaultWhenAbsent(t *testing.T) {
	svc := NewContentService(store.NewFileStore(tester.ContentPath(t)), nil)

	assert.Equal(t, model.Default(), svc.Get(context.TODO()))
}

func TestContentService_GetDefaultWhenCorrupt(t *testing.T) {
	path := tester.ContentPath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"projects": "nope"}`), 0o644))

	svc := NewContentService(store.NewFileStore(path), nil)

	assert.Equal(t, model.Default(), svc.Get(context.TODO()))
}

func TestContentService_SaveThenGet(t *testing.T) {
	c := &memoryCache{}
	s := store.NewFileStore(tester.ContentPath(t))
	svc := NewContentService(s, c)
	ctx := context.TODO()

	require.NoError(t, svc.Save(ctx, tester.Document()))
	assert.Equal(t, tester.Document(), svc.Get(ctx))
	assert.Equal(t, 1, c.sets)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, tester.Document(), loaded)
}

func TestContentService_SaveInvalid(t *testing.T) {
	s := store.NewFileStore(tester.ContentPath(t))
	svc := NewContentService(s, nil)
	ctx := context.TODO()

	require.NoError(t, svc.Save(ctx, tester.Document()))

	tests := []struct {
		name string
		doc  *model.SiteDocument
	}{
		{name: "nil document"},
		{name: "nil projects", doc: &model.SiteDocument{Contact: model.ContactInfo{PhoneText: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Save(ctx, tt.doc)
			assert.ErrorIs(t, err, ErrInvalidDocument)

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tester.Document(), loaded)
		})
	}
}

func TestContentService_SaveWriteFailure(t *testing.T) {
	c := &memoryCache{}
	svc := NewContentService(store.NewFileStore(brokenStorePath(t)), c)
	ctx := context.TODO()

	require.NoError(t, c.SetDocument(ctx, model.Default()))

	err := svc.Save(ctx, tester.Document())
	assert.ErrorIs(t, err, ErrWriteFailed)

	_, err = c.GetDocument(ctx)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	assert.Equal(t, model.Default(), svc.Get(ctx))
}

func TestContentService_CacheFirst(t *testing.T) {
	c := &memoryCache{}
	s := store.NewFileStore(tester.ContentPath(t))
	svc := NewContentService(s, c)
	ctx := context.TODO()

	require.NoError(t, s.Save(ctx, tester.Document()))

	// the first read fills the cache from the store
	assert.Equal(t, tester.Document(), svc.Get(ctx))
	assert.Equal(t, 1, c.sets)

	// a direct store write is invisible until the cache is invalidated
	require.NoError(t, s.Save(ctx, model.Default()))
	assert.Equal(t, tester.Document(), svc.Get(ctx))

	svc.Invalidate(ctx)
	assert.Equal(t, model.Default(), svc.Get(ctx))
}

func TestContentService_Refresh(t *testing.T) {
	c := &memoryCache{}
	s := store.NewFileStore(tester.ContentPath(t))
	svc := NewContentService(s, c)
	ctx := context.TODO()

	require.NoError(t, svc.Refresh(ctx))
	_, err := c.GetDocument(ctx)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, s.Save(ctx, tester.Document()))
	require.NoError(t, svc.Refresh(ctx))

	cached, err := c.GetDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, tester.Document(), cached)
}

func TestContentService_GormStore(t *testing.T) {
	svc := NewContentService(store.NewGormStore(tester.TestDB(t), nil), nil)
	ctx := context.TODO()

	assert.Equal(t, model.Default(), svc.Get(ctx))
	require.NoError(t, svc.Save(ctx, tester.Document()))
	assert.Equal(t, tester.Document(), svc.Get(ctx))
}

func TestContentService_SlowReadDoesNotOverwriteSave(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, svc *ContentService, s store.Store) error
		want  *model.SiteDocument
	}{
		{
			name: "save",
			write: func(ctx context.Context, svc *ContentService, s store.Store) error {
				return svc.Save(ctx, tester.Document())
			},
			want: tester.Document(),
		},
		{
			name: "external write then invalidate",
			write: func(ctx context.Context, svc *ContentService, s store.Store) error {
				if err := s.Save(ctx, tester.Document()); err != nil {
					return err
				}
				svc.Invalidate(ctx)
				return nil
			},
			want: tester.Document(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.TODO()
			fileStore := store.NewFileStore(tester.ContentPath(t))
			require.NoError(t, fileStore.Save(ctx, model.Default()))

			s := newPausingStore(fileStore)
			c := &memoryCache{}
			svc := NewContentService(s, c)

			read := make(chan *model.SiteDocument)
			go func() {
				read <- svc.Get(ctx)
			}()

			<-s.loaded
			require.NoError(t, tt.write(ctx, svc, fileStore))
			close(s.release)

			// the slow reader still answers with what it loaded
			assert.Equal(t, model.Default(), <-read)

			assert.Equal(t, tt.want, svc.Get(ctx))
			stored, err := fileStore.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored)
		})
	}
}

func TestContentService_ConcurrentSavesLeaveLastWriteCached(t *testing.T) {
	c := &memoryCache{}
	s := store.NewFileStore(tester.ContentPath(t))
	svc := NewContentService(s, c)
	ctx := context.TODO()

	docs := []*model.SiteDocument{model.Default(), tester.Document()}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(doc *model.SiteDocument) {
			defer wg.Done()
			assert.NoError(t, svc.Save(ctx, doc))
		}(docs[i%2])
	}
	wg.Wait()

	stored, err := s.Load(ctx)
	require.NoError(t, err)
	cached, err := c.GetDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, cached)
}
