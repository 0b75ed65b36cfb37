package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/sirupsen/logrus"
)

var _ Store = (*FileStore)(nil)

const dirMode = 0o755

// FileStore keeps the document as an indented JSON file.
// Writes go through a temp file and a rename, so readers never observe a
// partially written document. mu makes this process the single writer.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the content file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (*model.SiteDocument, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, absent(err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		logrus.Warnf("ignoring unusable content file %s: %v", f.path, err)
		return nil, absent(err)
	}

	return doc, nil
}

func (f *FileStore) Save(ctx context.Context, doc *model.SiteDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// remove the temp file unless the rename below consumed it
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, f.path)
}

// Migrate creates the directory holding the content file.
func (f *FileStore) Migrate() error {
	return os.MkdirAll(filepath.Dir(f.path), dirMode)
}

func (f *FileStore) Close() error {
	return nil
}
