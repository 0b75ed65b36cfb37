package jobs

import (
	"context"

	"github.com/bcmimarlik/site/internal/service"
	"github.com/sirupsen/logrus"
)

// CacheSyncTask copies the stored document into the cache, picking up writes
// made to the store by other processes.
type CacheSyncTask struct {
	content *service.ContentService
	cron    string
}

func NewCacheSyncTask(interval string, content *service.ContentService) *CacheSyncTask {
	return &CacheSyncTask{
		content: content,
		cron:    interval,
	}
}

func (c *CacheSyncTask) Name() string {
	return "cache_sync"
}

func (c *CacheSyncTask) Schedule() string {
	return c.cron
}

func (c *CacheSyncTask) Run() {
	if err := c.content.Refresh(context.Background()); err != nil {
		logrus.Errorf("cache sync failed: %v", err)
	}
}
