package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/model"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/migrations"

	_ "github.com/lib/pq"
)

var _ repository.Repository = (*postgresRepository)(nil)

type postgresRepository struct {
	db *sql.DB
}

// New connects to Postgres and brings the schema up to date.
func New(ctx context.Context, conf config.Postgres, logger *zap.Logger) (*postgresRepository, error) {
	db, err := Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, conf, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &postgresRepository{db: db}, nil
}

func Open(ctx context.Context, conf config.Postgres) (*sql.DB, error) {
	db, err := sql.Open("postgres", conf.DSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, conf.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %v", err)
	}
	return db, nil
}

func Migrate(db *sql.DB, conf config.Postgres, logger *zap.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres.WithInstance: %v", err)
	}
	return migrations.Apply(driver, conf.DB, migrations.Postgres, conf.Migrations, logger)
}

const createPostQuery = `
	INSERT INTO posts (name, content, cover_image)
	VALUES ($1, $2, $3)
	RETURNING id, name, content, cover_image, created_at, updated_at
`

func (pr *postgresRepository) CreatePost(ctx context.Context, name string, content *string, coverImage *string) (*model.Post, error) {
	var row postRow
	err := pr.db.QueryRowContext(ctx, createPostQuery, name, content, coverImage).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("%w: insert post: %w", repository.ErrStore, err)
	}
	return row.toModel(), nil
}

const latestPostQuery = `
	SELECT id, name, content, cover_image, created_at, updated_at
	FROM posts
	ORDER BY created_at DESC, id DESC
	LIMIT 1
`

func (pr *postgresRepository) GetLatestPost(ctx context.Context) (*model.Post, error) {
	var row postRow
	err := pr.db.QueryRowContext(ctx, latestPostQuery).Scan(row.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: latest post: %w", repository.ErrStore, err)
	}
	return row.toModel(), nil
}

const listPostsQuery = `
	SELECT id, name, content, cover_image, created_at, updated_at
	FROM posts
	ORDER BY id
`

func (pr *postgresRepository) GetPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := pr.db.QueryContext(ctx, listPostsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: list posts: %w", repository.ErrStore, err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var row postRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("%w: scan post: %w", repository.ErrStore, err)
		}
		posts = append(posts, *row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate posts: %w", repository.ErrStore, err)
	}
	return posts, nil
}

func (pr *postgresRepository) Close() error {
	return pr.db.Close()
}

type postRow struct {
	ID         int64
	Name       string
	Content    sql.NullString
	CoverImage sql.NullString
	CreatedAt  sql.NullTime
	UpdatedAt  sql.NullTime
}

func (r *postRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.Content, &r.CoverImage, &r.CreatedAt, &r.UpdatedAt}
}

func (r *postRow) toModel() *model.Post {
	post := &model.Post{
		ID:   r.ID,
		Name: r.Name,
	}
	if r.Content.Valid {
		post.Content = &r.Content.String
	}
	if r.CoverImage.Valid {
		post.CoverImage = &r.CoverImage.String
	}
	if r.CreatedAt.Valid {
		post.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		post.UpdatedAt = r.UpdatedAt.Time
	}
	return post
}
