package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/model"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/migrations"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*sqliteRepository)(nil)

// sqliteRepository stores posts in a single SQLite file. Timestamps are
// written by the repository because SQLite defaults only have second precision.
type sqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func New(ctx context.Context, conf config.SQLite, logger *zap.Logger) (*sqliteRepository, error) {
	db, err := Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, conf, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteRepository{db: db, now: time.Now}, nil
}

func Open(ctx context.Context, conf config.SQLite) (*sql.DB, error) {
	db, err := sql.Open("sqlite", conf.Path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %v", err)
	}
	// a single connection serializes every read and write on this handle
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %v", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

func Migrate(db *sql.DB, conf config.SQLite, logger *zap.Logger) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite.WithInstance: %v", err)
	}
	return migrations.Apply(driver, filepath.Base(conf.Path), migrations.SQLite, "", logger)
}

const createPostQuery = `
	INSERT INTO posts (name, content, cover_image, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id
`

func (sr *sqliteRepository) CreatePost(ctx context.Context, name string, content *string, coverImage *string) (*model.Post, error) {
	now := sr.now().UTC()

	var id int64
	err := sr.db.QueryRowContext(ctx, createPostQuery, name, content, coverImage, now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%w: insert post: %w", repository.ErrStore, err)
	}

	return &model.Post{
		ID:         id,
		Name:       name,
		Content:    content,
		CoverImage: coverImage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

const latestPostQuery = `
	SELECT id, name, content, cover_image, created_at, updated_at
	FROM posts
	ORDER BY created_at DESC, id DESC
	LIMIT 1
`

func (sr *sqliteRepository) GetLatestPost(ctx context.Context) (*model.Post, error) {
	var row postRow
	err := sr.db.QueryRowContext(ctx, latestPostQuery).Scan(row.dest()...)
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

func (sr *sqliteRepository) GetPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := sr.db.QueryContext(ctx, listPostsQuery)
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

func (sr *sqliteRepository) Close() error {
	return sr.db.Close()
}

// postRow is scanned from the posts table and converted to model.Post
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
