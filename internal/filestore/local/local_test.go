package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	dir := filepath.Join(t.TempDir(), "public", "uploads")
	s := New(dir, "/uploads")
	frozen := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return frozen }
	return s, dir
}

func TestStoreCreatesDirectoryAndFile(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()

	stored, err := s.Store(ctx, []byte("png-bytes"), "cover.png")
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-cover.png", stored.StoredName)
	assert.Equal(t, "/uploads/1700000000000-cover.png", stored.PublicPath)
	assert.Equal(t, int64(9), stored.Size)

	content, err := os.ReadFile(filepath.Join(dir, stored.StoredName))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), content)
}

func TestStoreSameMillisecondDoesNotOverwrite(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()

	first, err := s.Store(ctx, []byte("first"), "same.jpg")
	require.NoError(t, err)
	second, err := s.Store(ctx, []byte("second"), "same.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first.PublicPath, second.PublicPath)
	assert.Equal(t, "1700000000001-same.jpg", second.StoredName)

	a, err := os.ReadFile(filepath.Join(dir, first.StoredName))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, second.StoredName))
	require.NoError(t, err)
	assert.Equal(t, "first", string(a))
	assert.Equal(t, "second", string(b))
}

func TestStoreGivesUpAfterMaxAttempts(t *testing.T) {
	s, dir := newTestStorage(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := 0; i < filestore.MaxNameAttempts; i++ {
		name := filestore.GeneratedName(time.UnixMilli(1700000000000+int64(i)), "x.bin")
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("taken"), 0o644))
	}

	_, err := s.Store(context.Background(), []byte("data"), "x.bin")
	assert.ErrorIs(t, err, filestore.ErrIO)
}

func TestStoreRejectsEmptyPayload(t *testing.T) {
	s, dir := newTestStorage(t)

	_, err := s.Store(context.Background(), []byte{}, "empty.png")
	assert.ErrorIs(t, err, filestore.ErrEmptyPayload)
	assert.ErrorIs(t, err, filestore.ErrIO)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStoreStripsDirectories(t *testing.T) {
	s, dir := newTestStorage(t)

	stored, err := s.Store(context.Background(), []byte("x"), "../../escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-escape.txt", stored.StoredName)
	assert.FileExists(t, filepath.Join(dir, stored.StoredName))

	_, err = s.Store(context.Background(), []byte("x"), "..")
	assert.ErrorIs(t, err, filestore.ErrInvalidName)
}

func TestStoreDirectoryCreationFailure(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

	s := New(filepath.Join(blocker, "uploads"), "/uploads")
	_, err := s.Store(context.Background(), []byte("x"), "a.png")
	assert.ErrorIs(t, err, filestore.ErrIO)
}

func TestOpenAndDelete(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	stored, err := s.Store(ctx, []byte("hello"), "a.txt")
	require.NoError(t, err)

	rc, err := s.Open(ctx, stored.StoredName)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete(ctx, stored.PublicPath))
	_, err = s.Open(ctx, stored.StoredName)
	assert.ErrorIs(t, err, filestore.ErrNotFound)

	// deleting twice is not an error
	require.NoError(t, s.Delete(ctx, stored.PublicPath))
}

func TestOpenRejectsTraversal(t *testing.T) {
	s, _ := newTestStorage(t)
	_, err := s.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, filestore.ErrNotFound)
}
