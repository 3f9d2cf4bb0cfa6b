// Package filestore stores uploaded payloads under generated names and maps
// them to the public paths clients use to fetch them back.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gfdmit/web-forum/blog-service/internal/model"
)

var (
	// ErrIO is the class of every write, read or directory failure.
	ErrIO = errors.New("file store i/o error")

	ErrEmptyPayload = fmt.Errorf("%w: empty payload", ErrIO)
	ErrInvalidName  = errors.New("invalid file name")
	ErrNotFound     = errors.New("file not found")
)

// MaxNameAttempts bounds how many prefixes are tried when a generated
// name is already taken.
const MaxNameAttempts = 16

type FileStore interface {
	// Store writes data under a name generated from suggestedName.
	Store(ctx context.Context, data []byte, suggestedName string) (model.StoredFile, error)

	// Open returns the content of a stored file by its generated name.
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Delete removes the file a public path points to.
	Delete(ctx context.Context, publicPath string) error
}

// CleanName reduces a client supplied file name to its last element so it
// can never address anything outside the content directory.
func CleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return base, nil
}

// GeneratedName returns "<epoch-millis>-<name>".
func GeneratedName(t time.Time, name string) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), name)
}

// PublicPath joins the public prefix and a generated name.
func PublicPath(prefix, storedName string) string {
	return path.Join("/", prefix, storedName)
}

// StoredName extracts the generated name back from a public path.
func StoredName(prefix, publicPath string) (string, error) {
	rest, ok := strings.CutPrefix(publicPath, path.Join("/", prefix)+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", fmt.Errorf("%w: %q is not under %q", ErrInvalidName, publicPath, prefix)
	}
	return rest, nil
}
