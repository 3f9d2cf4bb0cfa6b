package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
)

func setupPostgres(t *testing.T) *postgresRepository {
	if os.Getenv("BLOG_TEST_POSTGRES_HOST") == "" {
		t.Skip("BLOG_TEST_POSTGRES_HOST env not set")
	}
	t.Setenv("POSTGRES_HOST", os.Getenv("BLOG_TEST_POSTGRES_HOST"))

	conf, err := config.New("")
	require.NoError(t, err)

	repo, err := New(context.Background(), conf.Postgres, zap.NewNop())
	require.NoError(t, err)

	_, err = repo.db.Exec("TRUNCATE posts RESTART IDENTITY")
	require.NoError(t, err)

	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndList(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	_, err := repo.GetLatestPost(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	content := "World"
	first, err := repo.CreatePost(ctx, "Hello", &content, nil)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "Hello", first.Name)
	require.NotNil(t, first.Content)
	assert.Equal(t, "World", *first.Content)
	assert.Nil(t, first.CoverImage)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	cover := "/uploads/1-a.png"
	second, err := repo.CreatePost(ctx, "Second", nil, &cover)
	require.NoError(t, err)

	latest, err := repo.GetLatestPost(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	posts, err := repo.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, cover, *posts[1].CoverImage)
}
