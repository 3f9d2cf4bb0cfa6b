package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/model"
)

var _ filestore.FileStore = (*Storage)(nil)

// Storage keeps uploads as plain files in a single directory.
type Storage struct {
	basePath     string
	publicPrefix string
	now          func() time.Time
}

func New(basePath, publicPrefix string) *Storage {
	return &Storage{
		basePath:     basePath,
		publicPrefix: publicPrefix,
		now:          time.Now,
	}
}

func (s *Storage) Store(ctx context.Context, data []byte, suggestedName string) (model.StoredFile, error) {
	if len(data) == 0 {
		return model.StoredFile{}, filestore.ErrEmptyPayload
	}
	name, err := filestore.CleanName(suggestedName)
	if err != nil {
		return model.StoredFile{}, err
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return model.StoredFile{}, fmt.Errorf("%w: create upload directory: %w", filestore.ErrIO, err)
	}

	file, storedName, err := s.createExclusive(ctx, name)
	if err != nil {
		return model.StoredFile{}, err
	}

	n, err := file.Write(data)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filepath.Join(s.basePath, storedName))
		return model.StoredFile{}, fmt.Errorf("%w: write %s: %w", filestore.ErrIO, storedName, err)
	}

	return model.StoredFile{
		StoredName: storedName,
		PublicPath: filestore.PublicPath(s.publicPrefix, storedName),
		Size:       int64(n),
	}, nil
}

// createExclusive opens a new file that did not exist before. A taken name
// moves the millisecond prefix forward instead of overwriting.
func (s *Storage) createExclusive(ctx context.Context, name string) (*os.File, string, error) {
	ts := s.now()
	for attempt := 0; attempt < filestore.MaxNameAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		storedName := filestore.GeneratedName(ts, name)
		file, err := os.OpenFile(filepath.Join(s.basePath, storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, storedName, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("%w: create %s: %w", filestore.ErrIO, storedName, err)
		}
		ts = ts.Add(time.Millisecond)
	}
	return nil, "", fmt.Errorf("%w: no free name for %q after %d attempts", filestore.ErrIO, name, filestore.MaxNameAttempts)
}

func (s *Storage) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	name, err := filestore.CleanName(storedName)
	if err != nil || name != storedName {
		return nil, filestore.ErrNotFound
	}
	file, err := os.Open(filepath.Join(s.basePath, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, filestore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", filestore.ErrIO, name, err)
	}
	return file, nil
}

func (s *Storage) Delete(ctx context.Context, publicPath string) error {
	name, err := filestore.StoredName(s.publicPrefix, publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.basePath, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", filestore.ErrIO, name, err)
	}
	return nil
}
