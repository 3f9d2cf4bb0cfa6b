package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/filestore/local"
	"github.com/gfdmit/web-forum/blog-service/internal/filestore/minio"
	v1 "github.com/gfdmit/web-forum/blog-service/internal/handlers/http/v1"
	"github.com/gfdmit/web-forum/blog-service/internal/httpserver"
	"github.com/gfdmit/web-forum/blog-service/internal/observability"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/internal/repository/postgres"
	"github.com/gfdmit/web-forum/blog-service/internal/repository/sqlite"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
	"github.com/gfdmit/web-forum/blog-service/internal/view"
)

// Run wires the service together and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	if !conf.Log.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, shutdownTracing, err := observability.InitTracerProvider(conf.Tracing.Enabled, conf.Tracing.ServiceName, logger)
	if err != nil {
		return fmt.Errorf("error when setting up tracing: %v", err)
	}
	defer shutdownTracing(context.WithoutCancel(ctx))

	repo, err := newRepository(ctx, conf, logger)
	if err != nil {
		return fmt.Errorf("error when setting up repository: %v", err)
	}
	defer repo.Close()

	files, err := newFileStore(ctx, conf, logger)
	if err != nil {
		return fmt.Errorf("error when setting up file store: %v", err)
	}

	loc, err := conf.View.Location()
	if err != nil {
		return fmt.Errorf("error when reading display timezone: %v", err)
	}

	metrics := observability.NewMetrics()

	svc := service.New(repo, files,
		service.WithLogger(logger),
		service.WithRecorder(metrics),
		service.WithTracerProvider(tp),
		service.WithCleanupOnFailure(conf.Storage.CleanupOnFailure),
	)

	handler, err := v1.New(svc, v1.Deps{
		Logger:       logger,
		Metrics:      metrics,
		View:         view.Options{Location: loc, DefaultCover: conf.View.DefaultCover},
		AllowOrigins: conf.HTTPServer.AllowOrigins,
		PublicPrefix: conf.Storage.PublicPrefix,
	})
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	srv := httpserver.New(conf.HTTPServer, handler, logger)

	return srv.Run(ctx)
}

// Migrate brings the configured database schema up to date and exits.
func Migrate(ctx context.Context, conf config.Config, logger *zap.Logger) error {
	repo, err := newRepository(ctx, conf, logger)
	if err != nil {
		return fmt.Errorf("error when migrating: %v", err)
	}
	return repo.Close()
}

func newRepository(ctx context.Context, conf config.Config, logger *zap.Logger) (repository.Repository, error) {
	switch conf.Database.Driver {
	case "postgres":
		return postgres.New(ctx, conf.Postgres, logger)
	case "sqlite":
		return sqlite.New(ctx, conf.SQLite, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", conf.Database.Driver)
	}
}

func newFileStore(ctx context.Context, conf config.Config, logger *zap.Logger) (filestore.FileStore, error) {
	switch conf.Storage.Backend {
	case "local":
		return local.New(conf.Storage.UploadsDir, conf.Storage.PublicPrefix), nil
	case "minio":
		return minio.New(ctx, conf.MinIO, conf.Storage.PublicPrefix, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
