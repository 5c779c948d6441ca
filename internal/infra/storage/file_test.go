package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

func TestFileStoreSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chips.JPG")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o600))

	s, err := NewFileStore(path).Sample(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "chips.JPG", s.Name)
	assert.Equal(t, "image/jpeg", s.MIMEType)
	assert.Equal(t, []byte{0xff, 0xd8}, s.Data)
}

func TestFileStoreMissing(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope.png")).Sample(t.Context())
	assert.ErrorIs(t, err, footprint.ErrSampleNotFound)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "image/png", MIMEType("a.png"))
	assert.Equal(t, "image/webp", MIMEType("a.WEBP"))
	assert.Equal(t, "application/octet-stream", MIMEType("a.gif"))
}
