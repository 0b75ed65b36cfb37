package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bcmimarlik/site/internal/model"
)

var (
	// ErrAbsent is returned by Load when there is no usable persisted document.
	// Callers substitute model.Default().
	ErrAbsent = errors.New("site document absent")
	// ErrIncompleteDocument marks a document that parsed but lacks a top-level section.
	ErrIncompleteDocument = errors.New("site document is missing a required section")
)

// Store persists exactly one site document.
type Store interface {
	// Load reads the persisted document. Every failure is reported as ErrAbsent.
	Load(ctx context.Context) (*model.SiteDocument, error)
	// Save replaces the persisted document in full.
	Save(ctx context.Context, doc *model.SiteDocument) error
	Migrate() error
	Close() error
}

// documentShape mirrors SiteDocument with pointer sections so that a missing
// section can be told apart from an empty one.
type documentShape struct {
	Projects []model.ProjectEntry `json:"projects"`
	Contact  *model.ContactInfo   `json:"contact"`
	Links    *model.LinksInfo     `json:"links"`
}

// decodeDocument parses a persisted document, rejecting any document that is
// missing projects, contact or links.
func decodeDocument(data []byte) (*model.SiteDocument, error) {
	var shape documentShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, err
	}

	switch {
	case shape.Projects == nil:
		return nil, fmt.Errorf("%w: projects", ErrIncompleteDocument)
	case shape.Contact == nil:
		return nil, fmt.Errorf("%w: contact", ErrIncompleteDocument)
	case shape.Links == nil:
		return nil, fmt.Errorf("%w: links", ErrIncompleteDocument)
	}

	return &model.SiteDocument{
		Projects: shape.Projects,
		Contact:  *shape.Contact,
		Links:    *shape.Links,
	}, nil
}

func absent(err error) error {
	return fmt.Errorf("%w: %v", ErrAbsent, err)
}
