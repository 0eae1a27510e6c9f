package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageService_SaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage := NewStorageService(dir)
	require.NoError(t, storage.EnsureUploadDir())

	path, err := storage.SaveFile([]byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "resume_"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	require.NoError(t, storage.DeleteFile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error
	assert.NoError(t, storage.DeleteFile(path))
	assert.NoError(t, storage.DeleteFile(""))
}

func TestStorageService_UniqueNames(t *testing.T) {
	storage := NewStorageService(t.TempDir())

	a, err := storage.SaveFile([]byte("a"))
	require.NoError(t, err)
	b, err := storage.SaveFile([]byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStorageService_SaveIntoMissingDir(t *testing.T) {
	storage := NewStorageService(filepath.Join(t.TempDir(), "missing"))

	_, err := storage.SaveFile([]byte("a"))
	assert.Error(t, err)
}
