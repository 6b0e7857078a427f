// Package storage persists uploaded identity documents and serves them back under
// the public /uploads namespace.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix is the URL namespace documents are served from.
const PublicPrefix = "/uploads/"

// ErrUnsupportedType rejects uploads that are not images.
var ErrUnsupportedType = errors.New("unsupported document type")

// Upload is a document received with a registration.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store saves documents and serves them back.
type Store interface {
	// Save persists the upload and returns its public path.
	Save(ctx context.Context, up Upload) (string, error)
	// Delete removes a previously saved document by its public path.
	Delete(ctx context.Context, publicPath string) error
	// Handler serves GET requests below PublicPrefix.
	Handler() http.Handler
}

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".pdf":  "application/pdf",
}

// objectKey derives a collision free storage key, keeping the original extension.
func objectKey(up Upload, now time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), uuid.NewString(), ext), nil
}

func contentType(up Upload) string {
	if up.ContentType != "" {
		return up.ContentType
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(up.Filename))]
}

func publicPath(key string) string {
	return path.Join(PublicPrefix, key)
}

// keyFromPath reverses publicPath, rejecting anything outside PublicPrefix.
func keyFromPath(p string) (string, error) {
	key := strings.TrimPrefix(p, PublicPrefix)
	if key == "" || key == p || strings.ContainsAny(key, `/\`) || key == ".." {
		return "", fmt.Errorf("platform/storage: invalid document path %q", p)
	}
	return key, nil
}
