package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/model"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// Ingestion outcomes reported to the Recorder.
const (
	ResultCreated     = "created"
	ResultInvalid     = "invalid"
	ResultStoreFailed = "store_failed"
	ResultSaveFailed  = "save_failed"
)

// Recorder receives ingestion counters.
type Recorder interface {
	ObserveIngestion(result string)
	ObserveUpload(bytes int64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveIngestion(string) {}
func (nopRecorder) ObserveUpload(int64)     {}

type SubmitInput struct {
	Name      string
	Content   *string
	Image     []byte
	ImageName string
}

type Service struct {
	repo   repository.Repository
	files  filestore.FileStore
	logger *zap.Logger
	tracer trace.Tracer
	rec    Recorder

	cleanupOnFailure bool
}

type Option func(*Service)

// WithCleanupOnFailure makes Submit delete the stored image when the post
// insert fails.
func WithCleanupOnFailure(enabled bool) Option {
	return func(svc *Service) { svc.cleanupOnFailure = enabled }
}

func WithLogger(logger *zap.Logger) Option {
	return func(svc *Service) { svc.logger = logger }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(svc *Service) { svc.tracer = tp.Tracer("blog-service/service") }
}

func WithRecorder(rec Recorder) Option {
	return func(svc *Service) { svc.rec = rec }
}

func New(repo repository.Repository, files filestore.FileStore, opts ...Option) *Service {
	svc := &Service{
		repo:   repo,
		files:  files,
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer(""),
		rec:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit stores the image, if any, and then creates the post referencing it.
// A failed store returns before anything is inserted.
func (svc *Service) Submit(ctx context.Context, in SubmitInput) (*model.Post, error) {
	ctx, span := svc.tracer.Start(ctx, "service.submit",
		trace.WithAttributes(attribute.Bool("post.has_image", in.Image != nil)))
	defer span.End()

	if strings.TrimSpace(in.Name) == "" {
		svc.rec.ObserveIngestion(ResultInvalid)
		err := fmt.Errorf("%w: name is required", ErrInvalidInput)
		fail(span, err)
		return nil, err
	}

	var stored *model.StoredFile
	if in.Image != nil {
		file, err := svc.store(ctx, in.Image, in.ImageName)
		if err != nil {
			svc.rec.ObserveIngestion(ResultStoreFailed)
			fail(span, err)
			return nil, err
		}
		stored = &file
	}

	var coverImage *string
	if stored != nil {
		coverImage = &stored.PublicPath
	}

	post, err := svc.createPost(ctx, in.Name, in.Content, coverImage)
	if err != nil {
		svc.rec.ObserveIngestion(ResultSaveFailed)
		fail(span, err)
		if stored != nil {
			svc.orphaned(ctx, stored.PublicPath)
		}
		return nil, err
	}

	svc.rec.ObserveIngestion(ResultCreated)
	svc.logger.Info("post created",
		zap.Int64("id", post.ID),
		zap.Bool("cover_image", coverImage != nil),
	)
	return post, nil
}

// orphaned handles a stored file whose post was never inserted.
func (svc *Service) orphaned(ctx context.Context, publicPath string) {
	if !svc.cleanupOnFailure {
		svc.logger.Warn("stored file left without a post", zap.String("path", publicPath))
		return
	}
	// the request may already be cancelled; the delete must still run
	if err := svc.files.Delete(context.WithoutCancel(ctx), publicPath); err != nil {
		svc.logger.Error("failed to delete orphaned file", zap.String("path", publicPath), zap.Error(err))
		return
	}
	svc.logger.Info("deleted orphaned file", zap.String("path", publicPath))
}

func (svc *Service) CreatePost(ctx context.Context, name string, content *string, coverImage *string) (*model.Post, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return svc.createPost(ctx, name, content, coverImage)
}

func (svc *Service) GetLatestPost(ctx context.Context) (*model.Post, error) {
	return svc.repo.GetLatestPost(ctx)
}

func (svc *Service) GetPosts(ctx context.Context) ([]model.Post, error) {
	return svc.repo.GetPosts(ctx)
}

// UploadFile decodes a base64 payload and stores it, returning its public path.
func (svc *Service) UploadFile(ctx context.Context, encoded string, fileName string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: file is not valid base64: %w", ErrInvalidInput, err)
	}
	stored, err := svc.Store(ctx, data, fileName)
	if err != nil {
		return "", err
	}
	return stored.PublicPath, nil
}

// Store writes raw bytes to the file store.
func (svc *Service) Store(ctx context.Context, data []byte, fileName string) (model.StoredFile, error) {
	return svc.store(ctx, data, fileName)
}

// Open returns a stored file by its generated name.
func (svc *Service) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	return svc.files.Open(ctx, storedName)
}

func (svc *Service) store(ctx context.Context, data []byte, fileName string) (model.StoredFile, error) {
	ctx, span := svc.tracer.Start(ctx, "filestore.store",
		trace.WithAttributes(attribute.Int("file.size", len(data))))
	defer span.End()

	stored, err := svc.files.Store(ctx, data, fileName)
	if err != nil {
		fail(span, err)
		return model.StoredFile{}, err
	}
	span.SetAttributes(attribute.String("file.path", stored.PublicPath))
	svc.rec.ObserveUpload(stored.Size)
	return stored, nil
}

func (svc *Service) createPost(ctx context.Context, name string, content *string, coverImage *string) (*model.Post, error) {
	ctx, span := svc.tracer.Start(ctx, "repository.create_post")
	defer span.End()

	post, err := svc.repo.CreatePost(ctx, name, content, coverImage)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("post.id", post.ID))
	return post, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
