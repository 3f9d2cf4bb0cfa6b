package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/config"
	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/model"
)

var _ filestore.FileStore = (*minioRepository)(nil)

type minioRepository struct {
	cli          *minio.Client
	bucket       string
	publicPrefix string
	now          func() time.Time
}

func New(ctx context.Context, conf config.MinIO, publicPrefix string, logger *zap.Logger) (*minioRepository, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: conf.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket lookup: %w", filestore.ErrIO, err)
	}
	if !exists {
		logger.Info("creating bucket", zap.String("bucket", conf.Bucket))
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: bucket creation: %w", filestore.ErrIO, err)
		}
	}

	return &minioRepository{
		cli:          client,
		bucket:       conf.Bucket,
		publicPrefix: publicPrefix,
		now:          time.Now,
	}, nil
}

func (mr *minioRepository) Store(ctx context.Context, data []byte, suggestedName string) (model.StoredFile, error) {
	if len(data) == 0 {
		return model.StoredFile{}, filestore.ErrEmptyPayload
	}
	name, err := filestore.CleanName(suggestedName)
	if err != nil {
		return model.StoredFile{}, err
	}

	objectName, err := mr.freeName(ctx, name)
	if err != nil {
		return model.StoredFile{}, err
	}

	info, err := mr.cli.PutObject(
		ctx,
		mr.bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(data)},
	)
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("%w: put %s: %w", filestore.ErrIO, objectName, err)
	}

	return model.StoredFile{
		StoredName: info.Key,
		PublicPath: filestore.PublicPath(mr.publicPrefix, info.Key),
		Size:       info.Size,
	}, nil
}

// freeName probes for an unused object key. Object stores have no
// exclusive create, so two writers racing on the same key can still collide.
func (mr *minioRepository) freeName(ctx context.Context, name string) (string, error) {
	ts := mr.now()
	for attempt := 0; attempt < filestore.MaxNameAttempts; attempt++ {
		objectName := filestore.GeneratedName(ts, name)
		_, err := mr.cli.StatObject(ctx, mr.bucket, objectName, minio.StatObjectOptions{})
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				return objectName, nil
			}
			return "", fmt.Errorf("%w: stat %s: %w", filestore.ErrIO, objectName, err)
		}
		ts = ts.Add(time.Millisecond)
	}
	return "", fmt.Errorf("%w: no free name for %q after %d attempts", filestore.ErrIO, name, filestore.MaxNameAttempts)
}

func (mr *minioRepository) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	if _, err := mr.cli.StatObject(ctx, mr.bucket, storedName, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, filestore.ErrNotFound
		}
		return nil, fmt.Errorf("%w: stat %s: %w", filestore.ErrIO, storedName, err)
	}
	obj, err := mr.cli.GetObject(ctx, mr.bucket, storedName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", filestore.ErrIO, storedName, err)
	}
	return obj, nil
}

func (mr *minioRepository) Delete(ctx context.Context, publicPath string) error {
	name, err := filestore.StoredName(mr.publicPrefix, publicPath)
	if err != nil {
		return err
	}
	if err := mr.cli.RemoveObject(ctx, mr.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove %s: %w", filestore.ErrIO, name, err)
	}
	return nil
}
