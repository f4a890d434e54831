package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/storage"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) List(_ context.Context, prefix string) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Object
	for k, v := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.Object{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memoryStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memoryStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) EnsureBucket(context.Context) error { return nil }

func (m *memoryStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestSyncUploadsBackgrounds(t *testing.T) {
	dir := t.TempDir()
	writeBackground(t, dir, "Albert-Einstein.png")
	writeBackground(t, dir, "Marie-Curie.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("notes"), 0o644))

	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	store := newMemoryStorage()
	svc := NewSyncService(store, nil, &SyncConfig{Workers: 2})

	stats, err := svc.Sync(context.Background(), cat, &SyncOptions{Prefix: "people"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalItems)
	assert.Equal(t, int64(2), stats.UploadedItems)
	assert.Equal(t, int64(1), stats.SkippedItems)
	assert.Zero(t, stats.FailedItems)
	assert.Equal(t, []string{"people/Albert-Einstein.png", "people/Marie-Curie.png"}, store.keys())
	assert.Equal(t, "image/png", store.types["people/Marie-Curie.png"])

	// Second run finds everything in place.
	stats, err = svc.Sync(context.Background(), cat, &SyncOptions{Prefix: "people"})
	require.NoError(t, err)
	assert.Zero(t, stats.UploadedItems)
	assert.Equal(t, int64(3), stats.SkippedItems)

	stats, err = svc.Sync(context.Background(), cat, &SyncOptions{Prefix: "people", Force: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.UploadedItems)

	// The uploaded pack loads back as a catalog with the same titles.
	remote, err := catalog.LoadFromStorage(context.Background(), store, "people/")
	require.NoError(t, err)
	require.Equal(t, 2, remote.Len())
	assert.Equal(t, "Albert-Einstein", remote.Entries()[0].Title)
}

func TestSyncDryRun(t *testing.T) {
	dir := t.TempDir()
	writeBackground(t, dir, "Ada-Lovelace.png")
	cat, err := catalog.Load(dir)
	require.NoError(t, err)

	store := newMemoryStorage()
	stats, err := NewSyncService(store, nil, &SyncConfig{}).Sync(context.Background(), cat, &SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UploadedItems)
	assert.Empty(t, store.keys())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "a.png", ObjectKey("", "/tmp/x/a.png"))
	assert.Equal(t, "pack/a.png", ObjectKey("pack", "/tmp/x/a.png"))
	assert.Equal(t, "pack/a.png", ObjectKey("pack/", "/tmp/x/a.png"))
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"gif":  "image/gif",
		"webp": "image/webp",
		"":     "application/octet-stream",
	}
	for format, want := range tests {
		assert.Equal(t, want, ContentType(format), format)
	}
}
