package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// FileStore serves the sample image from the local filesystem.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (s *FileStore) Sample(_ context.Context) (*footprint.Sample, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", footprint.ErrSampleNotFound, s.Path)
	}
	if err != nil {
		return nil, err
	}
	return &footprint.Sample{Name: filepath.Base(s.Path), Data: data, MIMEType: MIMEType(s.Path)}, nil
}

// MIMEType maps the allowed image extensions to their content type.
func MIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
