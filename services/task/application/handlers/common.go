// Package handlers exposes the versioned CRUD endpoints for the task bounded
// context. The expected entity version for conditional requests rides in the
// If-Match header; pagination uses page/size query params.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/taskmanager/services/task/domain"
	"github.com/ghuser/taskmanager/services/task/domain/repositories"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item [42] not found"`
} // @name ErrorResponse

// PageResponse is the wire shape for paged listings.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidArgument("invalid id %q", raw)
	}
	return id, nil
}

// ifMatchVersion parses the If-Match header into an expected version. A
// missing header or the wildcard "*" (any current version, per RFC 9110)
// means no version check; quotes around the value are allowed.
func ifMatchVersion(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	v, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil || v < 0 {
		return nil, domain.NewInvalidArgument("invalid If-Match header %q", raw)
	}
	return &v, nil
}

// pageRequest reads the page and size query params, falling back to the
// repository defaults.
func pageRequest(r *http.Request) repositories.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return repositories.PageRequest{Page: page, Size: size}.Normalize()
}
