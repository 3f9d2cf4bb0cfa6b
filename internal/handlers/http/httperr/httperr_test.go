package httperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gfdmit/web-forum/blog-service/internal/filestore"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", service.ErrInvalidInput), http.StatusBadRequest},
		{filestore.ErrEmptyPayload, http.StatusBadRequest},
		{fmt.Errorf("%w: \"..\"", filestore.ErrInvalidName), http.StatusBadRequest},
		{filestore.ErrNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: disk full", filestore.ErrIO), http.StatusInternalServerError},
		{fmt.Errorf("%w: connection refused", repository.ErrStore), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestMessageHidesInternals(t *testing.T) {
	err := fmt.Errorf("%w: dial tcp 10.0.0.1:5432", repository.ErrStore)
	assert.Equal(t, "internal server error", Message(err))

	err = fmt.Errorf("%w: name is required", service.ErrInvalidInput)
	assert.Equal(t, "invalid input: name is required", Message(err))
}
