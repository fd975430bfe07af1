package fotos

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded work-order photos and yields their public URLs.
type Store interface {
	Save(filename string, body io.Reader) (string, error)
}

// DiskStore writes photos under a local directory served by the HTTP layer.
type DiskStore struct {
	Dir     string
	BaseURL string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fotos dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save streams the body to disk under a unique name derived from the
// original filename's extension, and returns the public URL.
func (s *DiskStore) Save(filename string, body io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("create foto: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write foto: %w", err)
	}
	return s.BaseURL + "/" + path.Base(name), nil
}
