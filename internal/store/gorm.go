package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/bcmimarlik/site/internal/compress"
	"github.com/bcmimarlik/site/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB, codec compress.Compress) *GormStore {
	if codec == nil {
		codec = compress.NewNop()
	}
	return &GormStore{
		db:    db,
		codec: codec,
	}
}

var _ Store = (*GormStore)(nil)

// GormStore keeps the document in a single database row and replaces it
// inside a transaction. mu serializes writers of this process; writers in
// other processes meet at the unique slug.
type GormStore struct {
	db    *gorm.DB
	codec compress.Compress
	mu    sync.Mutex
}

func (g *GormStore) Load(ctx context.Context) (*model.SiteDocument, error) {
	record, err := g.getRecord(g.db.WithContext(ctx))
	if err != nil {
		return nil, absent(err)
	}

	codec, err := compress.New(record.Compression)
	if err != nil {
		return nil, absent(err)
	}

	data, err := codec.Decode(record.Content)
	if err != nil {
		logrus.Warnf("ignoring undecodable content record v%d: %v", record.Version, err)
		return nil, absent(err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		logrus.Warnf("ignoring unusable content record v%d: %v", record.Version, err)
		return nil, absent(err)
	}

	return doc, nil
}

func (g *GormStore) Save(ctx context.Context, doc *model.SiteDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	content, err := g.codec.Encode(data)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.Transaction(ctx, func(tx *gorm.DB) error {
		record, err := g.getRecord(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&model.ContentRecord{
				Slug:        model.ContentRecordSlug,
				Version:     1,
				Content:     content,
				Compression: g.codec.Name(),
			})
			if res.Error != nil || res.RowsAffected == 1 {
				return res.Error
			}
			// another writer created the row first
			record, err = g.getRecord(tx)
		}
		if err != nil {
			return err
		}

		record.Version++
		record.Content = content
		record.Compression = g.codec.Name()

		return tx.Save(record).Error
	})
}

// Version returns the version of the stored row, 0 when nothing is stored.
func (g *GormStore) Version(ctx context.Context) (int64, error) {
	record, err := g.getRecord(g.db.WithContext(ctx))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Version, nil
}

func (g *GormStore) getRecord(db *gorm.DB) (*model.ContentRecord, error) {
	var record model.ContentRecord
	err := db.Where("slug = ?", model.ContentRecordSlug).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(f)
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
