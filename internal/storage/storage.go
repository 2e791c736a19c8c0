// Package storage is the object storage collaborator for article images.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Uploader stores an image and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DiskUploader writes images to a local directory served at a public base
// URL. Objects are named by upload timestamp plus the original extension.
type DiskUploader struct {
	dir     string
	baseURL string
	log     zerolog.Logger
}

// NewDiskUploader creates the upload directory if needed
func NewDiskUploader(dir, baseURL string, log zerolog.Logger) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskUploader{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "storage").Logger(),
	}, nil
}

// Upload saves the image and returns its public URL. Any failure leaves no
// partial object behind.
func (u *DiskUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	objectName := fmt.Sprintf("%d%s", time.Now().UnixMilli(), ext)
	path := filepath.Join(u.dir, objectName)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	u.log.Debug().Str("object", objectName).Msg("Image uploaded")
	return u.baseURL + "/" + objectName, nil
}
