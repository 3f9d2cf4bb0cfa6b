package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
)

func setupSQLite(t *testing.T) *sqliteRepository {
	conf := config.SQLite{Path: filepath.Join(t.TempDir(), "blog.db")}
	repo, err := New(context.Background(), conf, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// stepClock returns a clock that advances by one second on every call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func TestCreatePostWithoutImage(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	content := "World"
	post, err := repo.CreatePost(ctx, "Hello", &content, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "Hello", post.Name)
	require.NotNil(t, post.Content)
	assert.Equal(t, "World", *post.Content)
	assert.Nil(t, post.CoverImage)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	stored, err := repo.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, post.ID, stored[0].ID)
	assert.Equal(t, "World", *stored[0].Content)
	assert.Nil(t, stored[0].CoverImage)
	assert.True(t, post.CreatedAt.Equal(stored[0].CreatedAt))
}

func TestGetLatestPostEmpty(t *testing.T) {
	repo := setupSQLite(t)

	post, err := repo.GetLatestPost(context.Background())
	assert.Nil(t, post)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetLatestPostReturnsNewest(t *testing.T) {
	repo := setupSQLite(t)
	repo.now = stepClock(time.Date(2024, 8, 30, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var last int64
	for _, name := range []string{"one", "two", "three"} {
		post, err := repo.CreatePost(ctx, name, nil, nil)
		require.NoError(t, err)
		last = post.ID
	}

	latest, err := repo.GetLatestPost(ctx)
	require.NoError(t, err)
	assert.Equal(t, last, latest.ID)
	assert.Equal(t, "three", latest.Name)

	all, err := repo.GetPosts(ctx)
	require.NoError(t, err)
	for _, p := range all {
		assert.False(t, p.CreatedAt.After(latest.CreatedAt))
	}
}

func TestGetPostsLengthAndIdempotence(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	const n = 5
	cover := "/uploads/1725005138710-cover.avif"
	for i := 0; i < n; i++ {
		_, err := repo.CreatePost(ctx, "post", nil, &cover)
		require.NoError(t, err)
	}

	first, err := repo.GetPosts(ctx)
	require.NoError(t, err)
	second, err := repo.GetPosts(ctx)
	require.NoError(t, err)

	assert.Len(t, first, n)
	assert.Equal(t, first, second)
	assert.Equal(t, cover, *first[0].CoverImage)
}

func TestGetPostsEmptyIsNotNil(t *testing.T) {
	repo := setupSQLite(t)

	posts, err := repo.GetPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	conf := config.SQLite{Path: filepath.Join(t.TempDir(), "blog.db")}
	ctx := context.Background()

	first, err := New(ctx, conf, zap.NewNop())
	require.NoError(t, err)
	_, err = first.CreatePost(ctx, "kept", nil, nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, conf, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	posts, err := second.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "kept", posts[0].Name)
}

func TestClosedStoreReturnsStoreError(t *testing.T) {
	repo := setupSQLite(t)
	require.NoError(t, repo.Close())

	_, err := repo.CreatePost(context.Background(), "x", nil, nil)
	assert.ErrorIs(t, err, repository.ErrStore)
}
