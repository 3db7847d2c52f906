// AngelaMos | 2026
// params.go

package core

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const uuidLen = 36

// PathID returns the URL parameter key when it is a canonical UUID. Any
// other value cannot name a stored row and is reported as not found.
func PathID(r *http.Request, key string) (string, error) {
	id := chi.URLParam(r, key)
	if len(id) != uuidLen {
		return "", fmt.Errorf("%s %q: %w", key, id, ErrNotFound)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%s %q: %w", key, id, ErrNotFound)
	}
	return id, nil
}
