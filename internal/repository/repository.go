package repository

import (
	"context"
	"errors"

	"github.com/gfdmit/web-forum/blog-service/internal/model"
)

var (
	// ErrStore wraps every driver failure: connectivity, constraints, scans.
	ErrStore = errors.New("post store error")

	// ErrNotFound is returned by GetLatestPost on an empty store.
	ErrNotFound = errors.New("post not found")
)

type Repository interface {
	CreatePost(ctx context.Context, name string, content *string, coverImage *string) (*model.Post, error)
	GetLatestPost(ctx context.Context) (*model.Post, error)
	GetPosts(ctx context.Context) ([]model.Post, error)
	Close() error
}
