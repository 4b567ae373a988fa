package archive

import (
	"fmt"
	"net/http"

	"github.com/starford/lectern/internal/apperr"
)

// APIError is a non-2xx response from the archive API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("archive error %d: %s", e.StatusCode, e.Detail)
}

// Is maps status codes onto the shared sentinel errors, so callers can test
// with errors.Is(err, apperr.ErrNotFound) without knowing about HTTP.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperr.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperr.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case apperr.ErrUpstream:
		return e.StatusCode >= 500
	}
	return false
}
