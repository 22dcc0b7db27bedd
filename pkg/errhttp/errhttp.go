// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/taskmanager/pkg/httpx"
	taskdomain "github.com/ghuser/taskmanager/services/task/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, taskdomain.ErrNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, taskdomain.ErrVersionConflict):
		return http.StatusConflict // 409
	case errors.Is(err, taskdomain.ErrInvalidArgument):
		return http.StatusBadRequest // 400
	case errors.Is(err, taskdomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
