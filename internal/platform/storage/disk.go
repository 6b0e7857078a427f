package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DiskStore keeps documents on the local filesystem.
type DiskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore creates dir when missing and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("platform/storage: create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Save writes the upload to disk.
func (s *DiskStore) Save(ctx context.Context, up Upload) (string, error) {
	key, err := objectKey(up, s.now())
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, key)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("platform/storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("platform/storage: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("platform/storage: close %s: %w", key, err)
	}
	return publicPath(key), nil
}

// Delete removes a saved document. Missing files are not an error.
func (s *DiskStore) Delete(ctx context.Context, p string) error {
	key, err := keyFromPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("platform/storage: remove %s: %w", key, err)
	}
	return nil
}

// Handler serves stored files with a one hour browser cache.
func (s *DiskStore) Handler() http.Handler {
	fileServer := http.StripPrefix(PublicPrefix, http.FileServer(noDirFS{http.Dir(s.dir)}))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
