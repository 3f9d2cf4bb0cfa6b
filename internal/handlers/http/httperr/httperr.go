// Package httperr maps domain errors onto HTTP statuses and client-safe messages.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
)

func Status(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, filestore.ErrInvalidName),
		errors.Is(err, filestore.ErrEmptyPayload):
		return http.StatusBadRequest
	case errors.Is(err, filestore.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the error text for client errors and a generic one for
// everything else.
func Message(err error) string {
	switch Status(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusNotFound:
		return "not found"
	default:
		return "internal server error"
	}
}
