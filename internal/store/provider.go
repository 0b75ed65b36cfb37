package store

import (
	"errors"
	"fmt"

	"github.com/bcmimarlik/site/internal/compress"
	"github.com/bcmimarlik/site/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Open builds the store selected by cfg.Store.Driver and migrates it.
func Open(cfg *config.Config) (Store, error) {
	var s Store

	switch cfg.Store.Driver {
	case "", "file":
		s = NewFileStore(cfg.Store.Path)
	case "sqlite", "postgres":
		codec, err := compress.New(cfg.Store.Compression)
		if err != nil {
			return nil, err
		}

		db, err := config.GetDb(cfg)
		if err != nil {
			return nil, err
		}
		s = NewGormStore(db, codec)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Store.Driver)
	}

	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}

	logrus.Infof("content store: %s", cfg.Store.Driver)

	return s, nil
}
