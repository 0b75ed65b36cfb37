package session

import (
	"context"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/service"
)

// ContentClient is the content service as seen by an editing session.
type ContentClient interface {
	GetContent(ctx context.Context) (*model.SiteDocument, error)
	SaveContent(ctx context.Context, doc *model.SiteDocument) error
}

var _ ContentClient = (*LocalClient)(nil)

// LocalClient calls the content service in process.
type LocalClient struct {
	content *service.ContentService
}

func NewLocalClient(content *service.ContentService) *LocalClient {
	return &LocalClient{content: content}
}

func (l *LocalClient) GetContent(ctx context.Context) (*model.SiteDocument, error) {
	return l.content.Get(ctx), nil
}

func (l *LocalClient) SaveContent(ctx context.Context, doc *model.SiteDocument) error {
	return l.content.Save(ctx, doc)
}
